package query

import (
	"fmt"
	"slices"

	"github.com/roach88/docstore/internal/schema"
)

// maxPasses bounds the fixed-point loop. Every rule shrinks the tree or moves
// it toward disjunctive normal form, so hitting the bound means a rewrite
// rule is broken.
const maxPasses = 256

// Normalize rewrites e into canonical disjunctive normal form by applying
// bottom-up rewrite passes until a pass changes nothing. The result is an
// Or of Ands (either level may collapse) whose leaves are atomics, Boxes
// and Not(Box). Null tests have one shape: IsNull for "is null" and
// NotNull for "is not null", and both fold to a constant on non-nullable
// fields. Terms are kept in canonical order, so Normalize(Normalize(e))
// equals Normalize(e).
//
// Distributing And over Or is exponential in the number of Or groups under
// one And; callers compiling deep mixed trees must bound their input.
func Normalize(e Expression) Expression {
	cur := e
	for range maxPasses {
		next := rewrite(cur)
		if Equal(next, cur) {
			return next
		}
		cur = next
	}
	panic(fmt.Sprintf("query: normalization did not converge after %d passes: %s", maxPasses, cur))
}

func rewrite(e Expression) Expression {
	switch n := e.(type) {
	case And:
		return simplifyAnd(rewriteAll(n.Terms))
	case Or:
		return simplifyOr(rewriteAll(n.Terms))
	case Not:
		return negate(rewrite(n.Term))
	case Range:
		return simplifyRange(n)
	case Equality, IsNull:
		return nullTest(e)
	case Box:
		return e
	default:
		panic(unreachable(e))
	}
}

// nullTest maps the spellings of a null test onto one shape. "is null" is
// IsNull and "is not null" is NotNull. A non-nullable field is never null,
// so there the test is a constant. Other terms are returned as is.
func nullTest(e Expression) Expression {
	var (
		f       schema.Field
		negated bool
	)
	switch n := e.(type) {
	case IsNull:
		f = n.Field
	case Equality:
		if !n.IsNullTest() {
			return e
		}
		f, negated = n.Field, n.Inverted
	case Not:
		isNull, ok := n.Term.(IsNull)
		if !ok {
			return e
		}
		f, negated = isNull.Field, true
	default:
		return e
	}
	switch {
	case !f.Nullable:
		return Sentinel(negated)
	case negated:
		return NotNull(f)
	default:
		return IsNull{Field: f}
	}
}

func rewriteAll(terms []Expression) []Expression {
	out := make([]Expression, len(terms))
	for i, t := range terms {
		out[i] = rewrite(t)
	}
	return out
}

// negate pushes a negation into an already rewritten tree.
func negate(e Expression) Expression {
	switch n := e.(type) {
	case Not:
		return n.Term
	case And:
		return simplifyOr(negateAll(n.Terms))
	case Or:
		return simplifyAnd(negateAll(n.Terms))
	case Box:
		if v, ok := constantOf(n); ok {
			return Sentinel(!v)
		}
		return Not{Term: n}
	case IsNull:
		return nullTest(Not{Term: n})
	case Range, Equality:
		if inv, ok := n.(Atomic).TryInvert(); ok {
			return rewrite(inv)
		}
		return Not{Term: n}
	default:
		panic(unreachable(e))
	}
}

func negateAll(terms []Expression) []Expression {
	out := make([]Expression, len(terms))
	for i, t := range terms {
		out[i] = negate(t)
	}
	return out
}

func simplifyAnd(terms []Expression) Expression {
	flat := make([]Expression, 0, len(terms))
	for _, t := range terms {
		switch {
		case IsTrue(t):
		case IsFalse(t):
			return False
		default:
			if a, ok := t.(And); ok {
				flat = append(flat, a.Terms...)
			} else {
				flat = append(flat, t)
			}
		}
	}

	flat = dedupe(sortTerms(flat))
	if hasComplement(flat) {
		return False
	}

	merged := make([]Expression, 0, len(flat))
	for _, t := range mergeAtomics(flat, true) {
		switch {
		case IsTrue(t):
		case IsFalse(t):
			return False
		default:
			merged = append(merged, t)
		}
	}
	merged = dedupe(sortTerms(merged))

	if i := slices.IndexFunc(merged, isOr); i >= 0 {
		return distribute(merged, i)
	}

	switch len(merged) {
	case 0:
		return True
	case 1:
		return merged[0]
	default:
		return And{Terms: merged}
	}
}

// distribute expands And[..., Or[x, y], ...] into Or[And[..., x], And[..., y]].
// Remaining Or terms are expanded by the recursive simplifyAnd calls, which
// yields the full cross product.
func distribute(terms []Expression, at int) Expression {
	or := terms[at].(Or)
	rest := slices.Delete(slices.Clone(terms), at, at+1)
	branches := make([]Expression, 0, len(or.Terms))
	for _, t := range or.Terms {
		branch := append(slices.Clone(rest), t)
		branches = append(branches, simplifyAnd(branch))
	}
	return simplifyOr(branches)
}

func simplifyOr(terms []Expression) Expression {
	flat := make([]Expression, 0, len(terms))
	for _, t := range terms {
		switch {
		case IsFalse(t):
		case IsTrue(t):
			return True
		default:
			if o, ok := t.(Or); ok {
				flat = append(flat, o.Terms...)
			} else {
				flat = append(flat, t)
			}
		}
	}

	flat = dedupe(sortTerms(flat))
	if hasComplement(flat) {
		return True
	}

	merged := make([]Expression, 0, len(flat))
	for _, t := range mergeAtomics(flat, false) {
		switch {
		case IsFalse(t):
		case IsTrue(t):
			return True
		default:
			merged = append(merged, t)
		}
	}
	merged = absorb(dedupe(sortTerms(merged)))

	switch len(merged) {
	case 0:
		return False
	case 1:
		return merged[0]
	default:
		return Or{Terms: merged}
	}
}

func isOr(e Expression) bool {
	_, ok := e.(Or)
	return ok
}

func dedupe(terms []Expression) []Expression {
	out := make([]Expression, 0, len(terms))
	for _, t := range terms {
		if !slices.ContainsFunc(out, func(u Expression) bool { return Equal(t, u) }) {
			out = append(out, t)
		}
	}
	return out
}

// hasComplement reports whether the terms contain some x together with Not(x).
func hasComplement(terms []Expression) bool {
	for _, t := range terms {
		n, ok := t.(Not)
		if !ok {
			continue
		}
		if slices.ContainsFunc(terms, func(u Expression) bool { return Equal(n.Term, u) }) {
			return true
		}
	}
	return false
}

// mergeAtomics replaces pairs of same-field atomics by their intersection
// (and) or union (or) until no pair combines. Each merge removes a term, so
// the loop terminates.
func mergeAtomics(terms []Expression, and bool) []Expression {
	out := slices.Clone(terms)
	for {
		i, j, res, ok := findMerge(out, and)
		if !ok {
			return out
		}
		out[i] = res
		out = slices.Delete(out, j, j+1)
	}
}

func findMerge(terms []Expression, and bool) (int, int, Expression, bool) {
	for i := range terms {
		a, ok := atomView(terms[i])
		if !ok {
			continue
		}
		for j := i + 1; j < len(terms); j++ {
			b, ok := atomView(terms[j])
			if !ok || !a.FieldRef().Same(b.FieldRef()) {
				continue
			}
			var res Expression
			if and {
				res, ok = a.TryIntersect(b)
			} else {
				res, ok = a.TryUnion(b)
			}
			if !ok {
				continue
			}
			switch {
			case Equal(res, a):
				res = terms[i]
			case Equal(res, b):
				res = terms[j]
			}
			return i, j, nullTest(res), true
		}
	}
	return 0, 0, nil, false
}

// atomView returns the atomic constraint a term stands for in the algebra.
func atomView(e Expression) (Atomic, bool) {
	switch n := e.(type) {
	case Range:
		return n, true
	case Equality:
		return n, true
	case IsNull:
		return n, true
	}
	return nil, false
}

// absorb drops every Or term whose conjuncts strictly contain the conjuncts
// of another term: x || (x && y) is x.
func absorb(terms []Expression) []Expression {
	out := make([]Expression, 0, len(terms))
	for i, t := range terms {
		absorbed := false
		for j, u := range terms {
			if i != j && subsumes(u, t) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			out = append(out, t)
		}
	}
	return out
}

// subsumes reports whether every conjunct of u appears in t and t has more.
func subsumes(u, t Expression) bool {
	cu, ct := Conjuncts(u), Conjuncts(t)
	if len(cu) >= len(ct) {
		return false
	}
	for _, x := range cu {
		if !slices.ContainsFunc(ct, func(y Expression) bool { return Equal(x, y) }) {
			return false
		}
	}
	return true
}

// Conjuncts returns the terms of an And, or e itself.
func Conjuncts(e Expression) []Expression {
	if a, ok := e.(And); ok {
		return a.Terms
	}
	return []Expression{e}
}

// Disjuncts returns the terms of an Or, or e itself. For a normalized tree
// these are the DNF branches.
func Disjuncts(e Expression) []Expression {
	if o, ok := e.(Or); ok {
		return o.Terms
	}
	return []Expression{e}
}
