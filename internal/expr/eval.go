package expr

import (
	"github.com/roach88/docstore/internal/ir"
)

// Env binds parameter names to values.
type Env map[string]ir.IRValue

// Bind returns an Env with one parameter bound to a record.
func Bind(param string, record ir.IRObject) Env {
	return Env{param: record}
}

// Eval evaluates e under env.
func Eval(e Expr, env Env) (ir.IRValue, error) {
	switch n := e.(type) {
	case Const:
		if n.Value == nil {
			return ir.IRNull{}, nil
		}
		return n.Value, nil

	case Param:
		v, ok := env[n.Name]
		if !ok {
			return nil, evalErrorf(n, "unbound parameter %q", n.Name)
		}
		return v, nil

	case Var:
		if n.Get == nil {
			return nil, evalErrorf(n, "variable %q has no getter", n.Name)
		}
		v, err := n.Get()
		if err != nil {
			return nil, &EvalError{Expr: n.Name, Message: "read variable", Err: err}
		}
		if v == nil {
			return ir.IRNull{}, nil
		}
		return v, nil

	case Member:
		x, err := Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		switch obj := x.(type) {
		case ir.IRObject:
			return obj.Get(n.Name), nil
		case ir.IRNull:
			return ir.IRNull{}, nil
		default:
			return nil, evalErrorf(n, "field access on %s", ir.KindName(x))
		}

	case Unary:
		return evalUnary(n, env)

	case Binary:
		return evalBinary(n, env)

	case Call:
		if n.Fn == nil {
			return nil, evalErrorf(n, "function %q is not defined", n.Name)
		}
		args := make([]ir.IRValue, len(n.Args))
		for i, a := range n.Args {
			v, err := Eval(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		v, err := n.Fn(args)
		if err != nil {
			return nil, &EvalError{Expr: String(n), Message: "call " + n.Name, Err: err}
		}
		if v == nil {
			return ir.IRNull{}, nil
		}
		return v, nil

	case nil:
		return nil, &EvalError{Expr: "<nil>", Message: "nil expression"}

	default:
		panic(unreachable(e))
	}
}

// EvalBool evaluates e and requires a boolean result.
func EvalBool(e Expr, env Env) (bool, error) {
	v, err := Eval(e, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(ir.IRBool)
	if !ok {
		return false, evalErrorf(e, "expected bool, got %s", ir.KindName(v))
	}
	return bool(b), nil
}

func evalUnary(n Unary, env Env) (ir.IRValue, error) {
	x, err := Eval(n.X, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpNot:
		b, ok := x.(ir.IRBool)
		if !ok {
			return nil, evalErrorf(n, "operator ! on %s", ir.KindName(x))
		}
		return !b, nil
	case OpNeg:
		i, ok := x.(ir.IRInt)
		if !ok {
			return nil, evalErrorf(n, "operator - on %s", ir.KindName(x))
		}
		return -i, nil
	default:
		return nil, evalErrorf(n, "invalid unary operator %s", n.Op)
	}
}

func evalBinary(n Binary, env Env) (ir.IRValue, error) {
	if n.Op == OpAnd || n.Op == OpOr {
		return evalLogical(n, env)
	}

	left, err := Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := Eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpEq:
		return ir.IRBool(ir.Equal(left, right)), nil
	case OpNe:
		return ir.IRBool(!ir.Equal(left, right)), nil
	case OpLt, OpLe, OpGt, OpGe:
		if ir.IsNull(left) || ir.IsNull(right) {
			return ir.IRBool(false), nil
		}
		c, err := ir.Compare(left, right)
		if err != nil {
			return nil, &EvalError{Expr: String(n), Message: "compare", Err: err}
		}
		return ir.IRBool(compareResult(n.Op, c)), nil
	case OpAdd:
		if ls, ok := left.(ir.IRString); ok {
			if rs, ok := right.(ir.IRString); ok {
				return ls + rs, nil
			}
		}
		return arith(n, left, right, func(a, b ir.IRInt) ir.IRInt { return a + b })
	case OpSub:
		return arith(n, left, right, func(a, b ir.IRInt) ir.IRInt { return a - b })
	case OpMul:
		return arith(n, left, right, func(a, b ir.IRInt) ir.IRInt { return a * b })
	case OpDiv:
		if r, ok := right.(ir.IRInt); ok && r == 0 {
			return nil, evalErrorf(n, "division by zero")
		}
		return arith(n, left, right, func(a, b ir.IRInt) ir.IRInt { return a / b })
	default:
		return nil, evalErrorf(n, "invalid binary operator %s", n.Op)
	}
}

// evalLogical short-circuits && and ||.
func evalLogical(n Binary, env Env) (ir.IRValue, error) {
	left, err := EvalBool(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Op == OpAnd && !left {
		return ir.IRBool(false), nil
	}
	if n.Op == OpOr && left {
		return ir.IRBool(true), nil
	}
	right, err := EvalBool(n.Right, env)
	if err != nil {
		return nil, err
	}
	return ir.IRBool(right), nil
}

func arith(n Binary, left, right ir.IRValue, fn func(a, b ir.IRInt) ir.IRInt) (ir.IRValue, error) {
	a, ok := left.(ir.IRInt)
	if !ok {
		return nil, evalErrorf(n, "operator %s on %s", n.Op, ir.KindName(left))
	}
	b, ok := right.(ir.IRInt)
	if !ok {
		return nil, evalErrorf(n, "operator %s on %s", n.Op, ir.KindName(right))
	}
	return fn(a, b), nil
}

func compareResult(op Op, c int) bool {
	switch op {
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	default:
		return c >= 0
	}
}
