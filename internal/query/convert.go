package query

import (
	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

// Classifier converts comparisons on an indexed field into the atomic shapes
// its index understands. cmp always has the field access on the left and the
// constant on the right. Returning false leaves the comparison in a Box.
type Classifier interface {
	TryConvert(cmp expr.Binary, param string, field schema.Field) (Atomic, bool)
}

// Converter maps a partially evaluated predicate onto a query tree.
type Converter struct {
	Model       *schema.Model
	Classifiers map[schema.FieldID]Classifier
}

// NewConverter returns a converter without classifiers.
func NewConverter(m *schema.Model) *Converter {
	return &Converter{Model: m}
}

// Convert never fails. Anything it cannot classify becomes a Box over the
// record parameter, which keeps the predicate correct but unindexed.
func (c *Converter) Convert(e expr.Expr, param string) Expression {
	switch n := e.(type) {
	case expr.Binary:
		switch n.Op {
		case expr.OpAnd:
			return And{Terms: []Expression{c.Convert(n.Left, param), c.Convert(n.Right, param)}}
		case expr.OpOr:
			return Or{Terms: []Expression{c.Convert(n.Left, param), c.Convert(n.Right, param)}}
		}
		if n.Op.IsComparison() {
			if out, ok := c.comparison(n, param); ok {
				return out
			}
		}

	case expr.Unary:
		if n.Op == expr.OpNot {
			return Not{Term: c.Convert(n.X, param)}
		}

	case expr.Const:
		if b, ok := n.Value.(ir.IRBool); ok {
			return Sentinel(bool(b))
		}
	}
	return Box{Body: e, Param: param}
}

// comparison handles field-versus-constant comparisons in either order.
func (c *Converter) comparison(n expr.Binary, param string) (Expression, bool) {
	name, isField := expr.FieldOf(n.Left, param)
	value, isConst := expr.ConstOf(n.Right)
	op := n.Op
	if !isField || !isConst {
		name, isField = expr.FieldOf(n.Right, param)
		value, isConst = expr.ConstOf(n.Left)
		op = op.Mirror()
	}
	if !isField || !isConst {
		return nil, false
	}

	field, ok := c.Model.Lookup(name)
	if !ok {
		return nil, false
	}

	if cl, ok := c.Classifiers[field.ID]; ok {
		cmp := expr.Binary{Op: op, Left: expr.Field(param, name), Right: expr.Value(value)}
		atom, ok := cl.TryConvert(cmp, param, field)
		if !ok {
			return nil, false
		}
		return atom, true
	}
	return Comparison(field, op, value)
}

// Comparison converts field op value into a node using the generic rules.
// Null equality tests become IsNull or Not(IsNull); ordering against null,
// ordering on unordered kinds and constants of the wrong kind are rejected.
func Comparison(field schema.Field, op expr.Op, value ir.IRValue) (Expression, bool) {
	if ir.IsNull(value) {
		switch op {
		case expr.OpEq:
			return IsNull{Field: field}, true
		case expr.OpNe:
			return Not{Term: IsNull{Field: field}}, true
		default:
			return nil, false
		}
	}
	if eq, ok := EqualityOf(field, op, value); ok {
		return eq, true
	}
	if r, ok := RangeOf(field, op, value); ok {
		return r, true
	}
	return nil, false
}

// EqualityOf builds the Equality for field == value or field != value.
// A null value yields the Equality form of a null test.
func EqualityOf(field schema.Field, op expr.Op, value ir.IRValue) (Equality, bool) {
	if op != expr.OpEq && op != expr.OpNe {
		return Equality{}, false
	}
	if ir.IsNull(value) {
		return Equality{Field: field, Inverted: op == expr.OpNe}, true
	}
	if !field.Kind.Accepts(value) {
		return Equality{}, false
	}
	return Equality{Field: field, Value: value, Inverted: op == expr.OpNe}, true
}

// RangeOf builds the one-sided Range for an ordering comparison.
func RangeOf(field schema.Field, op expr.Op, value ir.IRValue) (Range, bool) {
	if !op.IsOrdering() || ir.IsNull(value) || !field.Kind.Ordered() || !field.Kind.Accepts(value) {
		return Range{}, false
	}
	switch op {
	case expr.OpLt:
		return Range{Field: field, To: value}, true
	case expr.OpLe:
		return Range{Field: field, To: value, ToInclusive: true}, true
	case expr.OpGt:
		return Range{Field: field, From: value}, true
	default:
		return Range{Field: field, From: value, FromInclusive: true}, true
	}
}
