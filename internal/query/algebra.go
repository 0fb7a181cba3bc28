package query

import (
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

// TryIntersect combines the range with another constraint on the same field.
func (r Range) TryIntersect(other Atomic) (Expression, bool) { return intersect(r, other) }

// TryUnion combines the range with another constraint on the same field.
func (r Range) TryUnion(other Atomic) (Expression, bool) { return union(r, other) }

// TryIntersect combines the equality with another constraint on the same field.
func (e Equality) TryIntersect(other Atomic) (Expression, bool) { return intersect(e, other) }

// TryUnion combines the equality with another constraint on the same field.
func (e Equality) TryUnion(other Atomic) (Expression, bool) { return union(e, other) }

// TryIntersect combines the null test with another constraint on the same
// field. In the algebra IsNull behaves as Equality with a null value.
func (n IsNull) TryIntersect(other Atomic) (Expression, bool) { return intersect(n, other) }

// TryUnion combines the null test with another constraint on the same field.
func (n IsNull) TryUnion(other Atomic) (Expression, bool) { return union(n, other) }

// point is the algebra's view of Equality and IsNull. A nil value is null.
type point struct {
	value    ir.IRValue
	inverted bool
}

func pointOf(a Atomic) point {
	switch n := a.(type) {
	case Equality:
		if ir.IsNull(n.Value) {
			return point{inverted: n.Inverted}
		}
		return point{value: n.Value, inverted: n.Inverted}
	case IsNull:
		return point{}
	default:
		panic(unreachable(a))
	}
}

func (p point) null() bool { return p.value == nil }

func (p point) sameValue(o point) bool {
	if p.null() || o.null() {
		return p.null() && o.null()
	}
	return ir.Equal(p.value, o.value)
}

func intersect(a, b Atomic) (Expression, bool) {
	sameField(a, b)
	ra, aRange := a.(Range)
	rb, bRange := b.(Range)
	switch {
	case aRange && bRange:
		return intersectRanges(ra, rb)
	case aRange:
		return intersectRangePoint(ra, b, pointOf(b))
	case bRange:
		return intersectRangePoint(rb, a, pointOf(a))
	default:
		return intersectPoints(a, pointOf(a), b, pointOf(b))
	}
}

func union(a, b Atomic) (Expression, bool) {
	sameField(a, b)
	ra, aRange := a.(Range)
	rb, bRange := b.(Range)
	switch {
	case aRange && bRange:
		return unionRanges(ra, rb)
	case aRange:
		return unionRangePoint(ra, b, pointOf(b))
	case bRange:
		return unionRangePoint(rb, a, pointOf(a))
	default:
		return unionPoints(a, pointOf(a), b, pointOf(b))
	}
}

// intersectRanges keeps the tighter bound on each side.
func intersectRanges(a, b Range) (Expression, bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return False, true
	}
	lo := maxEndpoint(lowerOf(a), lowerOf(b))
	hi := minEndpoint(upperOf(a), upperOf(b))
	if lo.compare(hi) > 0 {
		return False, true
	}
	return simplifyRange(between(a.Field, lo, hi)), true
}

// unionRanges merges two ranges that overlap or touch. Two half-lines
// leaving out a single point become an inequality on non-nullable fields.
func unionRanges(a, b Range) (Expression, bool) {
	switch {
	case a.IsFull() || b.IsFull():
		return True, true
	case a.IsEmpty():
		return simplifyRange(b), true
	case b.IsEmpty():
		return simplifyRange(a), true
	}
	first, second := a, b
	if lowerOf(b).compare(lowerOf(a)) < 0 {
		first, second = b, a
	}

	firstHi, secondLo := upperOf(first), lowerOf(second)
	if firstHi.compare(secondLo) < 0 && !touches(firstHi, secondLo) {
		if !lowerOf(first).bounded() && !upperOf(second).bounded() &&
			ir.Equal(firstHi.value, secondLo.value) && !a.Field.Nullable {
			return Equality{Field: a.Field, Value: firstHi.value, Inverted: true}, true
		}
		return nil, false
	}

	lo := minEndpoint(lowerOf(a), lowerOf(b))
	hi := maxEndpoint(upperOf(a), upperOf(b))
	merged := between(a.Field, lo, hi)
	if merged.IsFull() {
		return everything(a), true
	}
	return simplifyRange(merged), true
}

func intersectRangePoint(r Range, a Atomic, p point) (Expression, bool) {
	if r.IsFull() {
		return a, true
	}
	switch {
	case p.null() && !p.inverted:
		// A bounded range never holds null.
		return False, true
	case p.null():
		return r, true
	case !p.inverted:
		if r.contains(p.value) {
			return a, true
		}
		return False, true
	}

	if !r.contains(p.value) {
		return r, true
	}
	if r.IsPoint() {
		return False, true
	}
	pos := at(p.value)
	switch {
	case lowerOf(r).compare(pos) == 0:
		r.FromInclusive = false
		return r, true
	case upperOf(r).compare(pos) == 0:
		r.ToInclusive = false
		return r, true
	}
	below := Range{Field: r.Field, From: r.From, FromInclusive: r.FromInclusive, To: p.value}
	above := Range{Field: r.Field, From: p.value, To: r.To, ToInclusive: r.ToInclusive}
	return Or{Terms: []Expression{below, above}}, true
}

func unionRangePoint(r Range, a Atomic, p point) (Expression, bool) {
	if r.IsFull() {
		return True, true
	}
	switch {
	case p.null() && !p.inverted:
		return nil, false
	case p.null():
		return a, true
	case p.inverted:
		if r.contains(p.value) {
			return True, true
		}
		return a, true
	}

	if r.contains(p.value) {
		return r, true
	}
	switch {
	case lowerOf(r).compare(endpoint{value: p.value, ext: 1}) == 0:
		r.FromInclusive = true
		return r, true
	case upperOf(r).compare(endpoint{value: p.value, ext: -1}) == 0:
		r.ToInclusive = true
		return r, true
	}
	return nil, false
}

// intersectPoints applies the polarity table for two point constraints.
func intersectPoints(a Atomic, pa point, b Atomic, pb point) (Expression, bool) {
	if pa.sameValue(pb) {
		if pa.inverted == pb.inverted {
			return pick(a, b), true
		}
		return False, true
	}
	switch {
	case !pa.inverted && !pb.inverted:
		return False, true
	case !pa.inverted:
		return a, true
	case !pb.inverted:
		return b, true
	}
	return excludeTwo(a, pa, b, pb)
}

func unionPoints(a Atomic, pa point, b Atomic, pb point) (Expression, bool) {
	if pa.sameValue(pb) {
		if pa.inverted == pb.inverted {
			return pick(a, b), true
		}
		return True, true
	}
	switch {
	case !pa.inverted && !pb.inverted:
		return nil, false
	case pa.inverted && pb.inverted:
		return True, true
	case pa.inverted:
		return a, true
	default:
		return b, true
	}
}

// excludeTwo expresses x != v1 && x != v2 as ranges around the excluded
// values. It needs an ordered field without a hash index: a hash index
// answers each inequality itself but cannot scan the ranges.
func excludeTwo(a Atomic, pa point, b Atomic, pb point) (Expression, bool) {
	f := a.FieldRef()
	if pa.null() || pb.null() {
		// "not null" and "!= v": on a non-nullable field only the inequality
		// carries information.
		ne, v := a, pa.value
		if pa.null() {
			ne, v = b, pb.value
		}
		if !f.Nullable {
			return ne, true
		}
		if !f.Kind.Ordered() || f.Index == schema.IndexHash {
			return nil, false
		}
		return Or{Terms: []Expression{
			Range{Field: f, To: v},
			Range{Field: f, From: v},
		}}, true
	}
	if !f.Kind.Ordered() || f.Index == schema.IndexHash {
		return nil, false
	}

	lo, hi := pa.value, pb.value
	if ir.MustCompare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	terms := make([]Expression, 0, 4)
	if f.Nullable {
		terms = append(terms, IsNull{Field: f})
	}
	terms = append(terms,
		Range{Field: f, To: lo},
		Range{Field: f, From: lo, To: hi},
		Range{Field: f, From: hi},
	)
	return Or{Terms: terms}, true
}

// everything is the union of all values a bounded constraint on f can
// take, which leaves out null on nullable fields.
func everything(a Atomic) Expression {
	if a.FieldRef().Nullable {
		return NotNull(a.FieldRef())
	}
	return True
}

// simplifyRange maps degenerate ranges onto simpler nodes.
func simplifyRange(r Range) Expression {
	switch {
	case r.IsFull():
		return True
	case r.IsEmpty():
		return False
	case r.IsPoint():
		return Equality{Field: r.Field, Value: r.From}
	default:
		return r
	}
}

// pick chooses between two equivalent operands deterministically.
func pick(a, b Atomic) Expression {
	if compareExpr(a, b) <= 0 {
		return a
	}
	return b
}
