package query

import (
	"strings"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

// Expression is a node of a query tree.
//
// This is a sealed interface: And, Or, Not, IsNull, Range, Equality and Box
// are the only implementations, and type switches over Expression are
// exhaustive.
type Expression interface {
	queryExpr()
	String() string
}

// Atomic is a leaf constraint on exactly one field.
//
// TryIntersect and TryUnion return ok == false when the combination is not
// representable as a node; the caller then keeps both terms. A provably
// empty result is False and a tautology is True. Combining constraints on
// different fields panics with *FieldMismatchError.
type Atomic interface {
	Expression
	FieldRef() schema.Field
	TryIntersect(other Atomic) (Expression, bool)
	TryUnion(other Atomic) (Expression, bool)
	TryInvert() (Expression, bool)

	// ToExpression renders the constraint as a predicate over param, for
	// evaluating it directly when it is not pushed into an index.
	ToExpression(param string) expr.Expr
}

// And is the conjunction of its terms.
type And struct {
	Terms []Expression
}

// Or is the disjunction of its terms.
type Or struct {
	Terms []Expression
}

// Not inverts its term. After normalization it only wraps IsNull and Box.
type Not struct {
	Term Expression
}

// IsNull is true when the field is absent or null.
type IsNull struct {
	Field schema.Field
}

// Range constrains a field to an interval. A nil From or To leaves that
// side unbounded; FromInclusive and ToInclusive are ignored on an unbounded
// side. [v, v] is a point.
type Range struct {
	Field         schema.Field
	From          ir.IRValue
	To            ir.IRValue
	FromInclusive bool
	ToInclusive   bool
}

// Equality tests a field for equality with Value, or inequality when
// Inverted. A nil or IRNull Value makes it a null test.
type Equality struct {
	Field    schema.Field
	Value    ir.IRValue
	Inverted bool
}

// Box is an opaque predicate over a single record that could not be
// classified. It is evaluated per record and never pushed to an index.
type Box struct {
	Body  expr.Expr
	Param string
}

func (And) queryExpr()      {}
func (Or) queryExpr()       {}
func (Not) queryExpr()      {}
func (IsNull) queryExpr()   {}
func (Range) queryExpr()    {}
func (Equality) queryExpr() {}
func (Box) queryExpr()      {}

// True and False are the trivial predicates, boxed constants.
var (
	True  Expression = Box{Body: expr.Value(ir.IRBool(true)), Param: expr.DefaultParam}
	False Expression = Box{Body: expr.Value(ir.IRBool(false)), Param: expr.DefaultParam}
)

// Sentinel returns True or False.
func Sentinel(b bool) Expression {
	if b {
		return True
	}
	return False
}

// IsTrue reports whether e is the True sentinel.
func IsTrue(e Expression) bool {
	v, ok := constantOf(e)
	return ok && v
}

// IsFalse reports whether e is the False sentinel.
func IsFalse(e Expression) bool {
	v, ok := constantOf(e)
	return ok && !v
}

func constantOf(e Expression) (bool, bool) {
	b, ok := e.(Box)
	if !ok {
		return false, false
	}
	c, ok := b.Body.(expr.Const)
	if !ok {
		return false, false
	}
	v, ok := c.Value.(ir.IRBool)
	return bool(v), ok
}

// Pushable is always false: a Box carries no index-usable structure.
func (Box) Pushable() bool { return false }

// Matches evaluates the boxed predicate against a record.
func (b Box) Matches(record ir.IRObject) (bool, error) {
	return expr.EvalBool(b.Body, expr.Bind(b.Param, record))
}

// FieldRef returns the constrained field.
func (n IsNull) FieldRef() schema.Field { return n.Field }

// FieldRef returns the constrained field.
func (r Range) FieldRef() schema.Field { return r.Field }

// FieldRef returns the constrained field.
func (e Equality) FieldRef() schema.Field { return e.Field }

// IsFull reports whether the range is unbounded on both sides.
func (r Range) IsFull() bool {
	return ir.IsNull(r.From) && ir.IsNull(r.To)
}

// IsPoint reports whether the range is [v, v].
func (r Range) IsPoint() bool {
	return !ir.IsNull(r.From) && !ir.IsNull(r.To) &&
		r.FromInclusive && r.ToInclusive && ir.Equal(r.From, r.To)
}

// IsEmpty reports whether no value satisfies the range.
func (r Range) IsEmpty() bool {
	return lowerOf(r).compare(upperOf(r)) > 0
}

// IsNullTest reports whether the equality compares against null.
func (e Equality) IsNullTest() bool {
	return ir.IsNull(e.Value)
}

// NotNull returns the "field is not null" constraint in Equality form.
func NotNull(f schema.Field) Equality {
	return Equality{Field: f, Inverted: true}
}

func (a And) String() string { return "and(" + joinTerms(a.Terms) + ")" }

func (o Or) String() string { return "or(" + joinTerms(o.Terms) + ")" }

func (n Not) String() string { return "not(" + n.Term.String() + ")" }

func (n IsNull) String() string { return n.Field.Name + " is null" }

func (r Range) String() string {
	lowered := !ir.IsNull(r.From)
	uppered := !ir.IsNull(r.To)
	switch {
	case !lowered && !uppered:
		return r.Field.Name + " in (-inf, +inf)"
	case !uppered:
		if r.FromInclusive {
			return r.Field.Name + " >= " + ir.Format(r.From)
		}
		return r.Field.Name + " > " + ir.Format(r.From)
	case !lowered:
		if r.ToInclusive {
			return r.Field.Name + " <= " + ir.Format(r.To)
		}
		return r.Field.Name + " < " + ir.Format(r.To)
	}

	var b strings.Builder
	b.WriteString(r.Field.Name)
	b.WriteString(" in ")
	if r.FromInclusive {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	b.WriteString(ir.Format(r.From))
	b.WriteString(", ")
	b.WriteString(ir.Format(r.To))
	if r.ToInclusive {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

func (e Equality) String() string {
	op := " == "
	if e.Inverted {
		op = " != "
	}
	return e.Field.Name + op + ir.Format(e.Value)
}

func (b Box) String() string {
	if v, ok := constantOf(b); ok {
		if v {
			return "true"
		}
		return "false"
	}
	return "box(" + expr.String(b.Body) + ")"
}

func joinTerms(terms []Expression) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
