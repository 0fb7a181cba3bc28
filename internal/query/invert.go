package query

import (
	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
)

// TryInvert returns the complement of the range. The complement of a
// bounded range includes null on nullable fields.
func (r Range) TryInvert() (Expression, bool) {
	switch {
	case r.IsFull():
		return False, true
	case r.IsEmpty():
		return True, true
	case r.IsPoint():
		// x != v already matches null.
		return Equality{Field: r.Field, Value: r.From, Inverted: true}, true
	}

	terms := make([]Expression, 0, 3)
	if r.Field.Nullable {
		terms = append(terms, IsNull{Field: r.Field})
	}
	if !ir.IsNull(r.From) {
		terms = append(terms, Range{Field: r.Field, To: r.From, ToInclusive: !r.FromInclusive})
	}
	if !ir.IsNull(r.To) {
		terms = append(terms, Range{Field: r.Field, From: r.To, FromInclusive: !r.ToInclusive})
	}
	if len(terms) == 1 {
		return terms[0], true
	}
	return Or{Terms: terms}, true
}

// TryInvert flips the polarity of the equality.
func (e Equality) TryInvert() (Expression, bool) {
	e.Inverted = !e.Inverted
	return e, true
}

// TryInvert always fails: a negated null test stays wrapped in Not.
func (n IsNull) TryInvert() (Expression, bool) {
	return nil, false
}

// ToExpression renders the range as comparisons on param.
func (r Range) ToExpression(param string) expr.Expr {
	field := expr.Field(param, r.Field.Name)
	var lower, upper expr.Expr
	if !ir.IsNull(r.From) {
		op := expr.OpGt
		if r.FromInclusive {
			op = expr.OpGe
		}
		lower = expr.Compare(op, field, expr.Value(r.From))
	}
	if !ir.IsNull(r.To) {
		op := expr.OpLt
		if r.ToInclusive {
			op = expr.OpLe
		}
		upper = expr.Compare(op, field, expr.Value(r.To))
	}
	switch {
	case lower != nil && upper != nil:
		return expr.Binary{Op: expr.OpAnd, Left: lower, Right: upper}
	case lower != nil:
		return lower
	case upper != nil:
		return upper
	default:
		return expr.Value(ir.IRBool(true))
	}
}

// ToExpression renders the equality as a comparison on param.
func (e Equality) ToExpression(param string) expr.Expr {
	op := expr.OpEq
	if e.Inverted {
		op = expr.OpNe
	}
	return expr.Compare(op, expr.Field(param, e.Field.Name), expr.Value(e.Value))
}

// ToExpression renders the null test as a comparison with null.
func (n IsNull) ToExpression(param string) expr.Expr {
	return expr.Compare(expr.OpEq, expr.Field(param, n.Field.Name), expr.Value(ir.IRNull{}))
}
