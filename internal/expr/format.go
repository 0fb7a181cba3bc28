package expr

import (
	"strings"

	"github.com/roach88/docstore/internal/ir"
)

func (p Param) String() string { return p.Name }

func (m Member) String() string {
	return wrap(m.X, 6) + "." + m.Name
}

func (c Const) String() string { return ir.Format(c.Value) }

func (v Var) String() string { return v.Name }

func (u Unary) String() string {
	return u.Op.String() + wrap(u.X, 6)
}

func (b Binary) String() string {
	p := b.Op.precedence()
	left := p
	if b.Op.IsComparison() {
		left = p + 1
	}
	return wrap(b.Left, left) + " " + b.Op.String() + " " + wrap(b.Right, p+1)
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// String renders e deterministically. Nil renders as "<nil>".
func String(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// wrap parenthesizes binary operands that bind weaker than min.
func wrap(e Expr, min int) string {
	if b, ok := e.(Binary); ok && b.Op.precedence() < min {
		return "(" + b.String() + ")"
	}
	return String(e)
}

// Equal reports structural equality. Vars compare by name and calls by name
// and arguments; function values are not compared.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Param:
		y, ok := b.(Param)
		return ok && x.Name == y.Name
	case Member:
		y, ok := b.(Member)
		return ok && x.Name == y.Name && Equal(x.X, y.X)
	case Const:
		y, ok := b.(Const)
		return ok && ir.Equal(x.Value, y.Value)
	case Var:
		y, ok := b.(Var)
		return ok && x.Name == y.Name
	case Unary:
		y, ok := b.(Unary)
		return ok && x.Op == y.Op && Equal(x.X, y.X)
	case Binary:
		y, ok := b.(Binary)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Call:
		y, ok := b.(Call)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		panic(unreachable(a))
	}
}

// References reports whether e transitively references the named parameter.
func References(e Expr, param string) bool {
	switch n := e.(type) {
	case nil, Const, Var:
		return false
	case Param:
		return n.Name == param
	case Member:
		return References(n.X, param)
	case Unary:
		return References(n.X, param)
	case Binary:
		return References(n.Left, param) || References(n.Right, param)
	case Call:
		for _, a := range n.Args {
			if References(a, param) {
				return true
			}
		}
		return false
	default:
		panic(unreachable(e))
	}
}

// FieldOf reports whether e is a direct field access on the named parameter
// and returns the field name.
func FieldOf(e Expr, param string) (string, bool) {
	m, ok := e.(Member)
	if !ok {
		return "", false
	}
	p, ok := m.X.(Param)
	if !ok || p.Name != param {
		return "", false
	}
	return m.Name, true
}

// ConstOf reports whether e is a constant and returns its value.
func ConstOf(e Expr) (ir.IRValue, bool) {
	c, ok := e.(Const)
	if !ok {
		return nil, false
	}
	if c.Value == nil {
		return ir.IRNull{}, true
	}
	return c.Value, true
}
