package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
)

// Equal reports structural equality of two trees. And and Or terms are
// compared in order; normalized trees keep their terms sorted, so equal
// normalized trees compare equal.
func Equal(a, b Expression) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case And:
		y, ok := b.(And)
		return ok && equalTerms(x.Terms, y.Terms)
	case Or:
		y, ok := b.(Or)
		return ok && equalTerms(x.Terms, y.Terms)
	case Not:
		y, ok := b.(Not)
		return ok && Equal(x.Term, y.Term)
	case IsNull:
		y, ok := b.(IsNull)
		return ok && x.Field.Same(y.Field)
	case Range:
		y, ok := b.(Range)
		return ok && x.Field.Same(y.Field) &&
			compareBounds(lowerOf(x), lowerOf(y)) == 0 &&
			compareBounds(upperOf(x), upperOf(y)) == 0
	case Equality:
		y, ok := b.(Equality)
		return ok && x.Field.Same(y.Field) && x.Inverted == y.Inverted &&
			ir.Equal(x.Value, y.Value)
	case Box:
		y, ok := b.(Box)
		if !ok {
			return false
		}
		if v, isConst := constantOf(x); isConst {
			w, isConst := constantOf(y)
			return isConst && v == w
		}
		return x.Param == y.Param && expr.Equal(x.Body, y.Body)
	default:
		panic(unreachable(a))
	}
}

func equalTerms(a, b []Expression) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Node ranks for the canonical order. Atomics sort first so that same-field
// constraints end up adjacent.
const (
	rankAtomic = iota
	rankNot
	rankAnd
	rankOr
	rankBox
)

func rankOf(e Expression) int {
	switch e.(type) {
	case IsNull, Equality, Range:
		return rankAtomic
	case Not:
		return rankNot
	case And:
		return rankAnd
	case Or:
		return rankOr
	case Box:
		return rankBox
	default:
		panic(unreachable(e))
	}
}

func atomicRank(a Atomic) int {
	switch a.(type) {
	case IsNull:
		return 0
	case Equality:
		return 1
	default:
		return 2
	}
}

// compareExpr is a total order over trees, used to keep And and Or terms
// sorted so that the normal form does not depend on input order.
func compareExpr(a, b Expression) int {
	if c := cmp.Compare(rankOf(a), rankOf(b)); c != 0 {
		return c
	}
	switch x := a.(type) {
	case IsNull, Equality, Range:
		return compareAtomic(x.(Atomic), b.(Atomic))
	case Not:
		return compareExpr(x.Term, b.(Not).Term)
	case And:
		return compareTerms(x.Terms, b.(And).Terms)
	case Or:
		return compareTerms(x.Terms, b.(Or).Terms)
	case Box:
		y := b.(Box)
		if c := strings.Compare(x.String(), y.String()); c != 0 {
			return c
		}
		return strings.Compare(x.Param, y.Param)
	default:
		panic(unreachable(a))
	}
}

func compareTerms(a, b []Expression) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	for i := range a {
		if c := compareExpr(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareAtomic(a, b Atomic) int {
	if c := cmp.Compare(a.FieldRef().ID, b.FieldRef().ID); c != 0 {
		return c
	}
	if c := cmp.Compare(atomicRank(a), atomicRank(b)); c != 0 {
		return c
	}
	switch x := a.(type) {
	case IsNull:
		return 0
	case Equality:
		y := b.(Equality)
		if c := compareValues(x.Value, y.Value); c != 0 {
			return c
		}
		return compareBool(x.Inverted, y.Inverted)
	case Range:
		y := b.(Range)
		if c := compareBounds(lowerOf(x), lowerOf(y)); c != 0 {
			return c
		}
		return compareBounds(upperOf(x), upperOf(y))
	default:
		panic(unreachable(a))
	}
}

// compareValues orders null first, then by kind name, then by value.
func compareValues(a, b ir.IRValue) int {
	an, bn := ir.IsNull(a), ir.IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	if !ir.SameKind(a, b) {
		return strings.Compare(ir.KindName(a), ir.KindName(b))
	}
	return ir.MustCompare(a, b)
}

// compareBounds is endpoint.compare made total over mismatched kinds.
func compareBounds(a, b endpoint) int {
	if a.bounded() && b.bounded() && !ir.SameKind(a.value, b.value) {
		return strings.Compare(ir.KindName(a.value), ir.KindName(b.value))
	}
	return a.compare(b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// sortTerms returns the terms in canonical order.
func sortTerms(terms []Expression) []Expression {
	out := slices.Clone(terms)
	slices.SortStableFunc(out, compareExpr)
	return out
}
