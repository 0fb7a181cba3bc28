package expr

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"

	"github.com/roach88/docstore/internal/ir"
)

// DefaultParam is the record parameter name used when Options.Param is empty.
const DefaultParam = "r"

// Options configures Parse.
type Options struct {
	// Param names the record parameter. Defaults to DefaultParam.
	Param string

	// Vars are captured variables visible to the predicate by name.
	Vars map[string]ir.IRValue

	// Funcs are the functions a predicate may call.
	Funcs map[string]Func
}

// ParamName returns the effective record parameter name.
func (o Options) ParamName() string {
	if o.Param == "" {
		return DefaultParam
	}
	return o.Param
}

// Parse parses a predicate written in CUE expression syntax:
//
//	r.age >= 18 && (r.email == null || !(r.name == "bob"))
//
// Supported forms are field selection on the record parameter (r.name or
// r["full name"]), int, string, bool and null literals, captured variables,
// registered function calls, and the operators ! - && || == != < <= > >=
// + - * /. Float literals are rejected.
func Parse(src string, opts Options) (Expr, error) {
	node, err := parser.ParseExpr("filter", src)
	if err != nil {
		return nil, parseErrorFrom(err)
	}
	p := &exprParser{opts: opts, param: opts.ParamName()}
	return p.convert(node)
}

// MustParse is like Parse but panics on error.
// Use only in tests or for statically known predicates.
func MustParse(src string, opts Options) Expr {
	e, err := Parse(src, opts)
	if err != nil {
		panic(err)
	}
	return e
}

type exprParser struct {
	opts  Options
	param string
}

var binaryOps = map[token.Token]Op{
	token.LAND: OpAnd,
	token.LOR:  OpOr,
	token.EQL:  OpEq,
	token.NEQ:  OpNe,
	token.LSS:  OpLt,
	token.LEQ:  OpLe,
	token.GTR:  OpGt,
	token.GEQ:  OpGe,
	token.ADD:  OpAdd,
	token.SUB:  OpSub,
	token.MUL:  OpMul,
	token.QUO:  OpDiv,
}

func (p *exprParser) convert(node ast.Expr) (Expr, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return p.convert(n.X)

	case *ast.BinaryExpr:
		op, ok := binaryOps[n.Op]
		if !ok {
			return nil, p.errorf(n.OpPos, "unsupported operator %s", n.Op)
		}
		left, err := p.convert(n.X)
		if err != nil {
			return nil, err
		}
		right, err := p.convert(n.Y)
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, Left: left, Right: right}, nil

	case *ast.UnaryExpr:
		x, err := p.convert(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.NOT:
			return Unary{Op: OpNot, X: x}, nil
		case token.SUB:
			return Unary{Op: OpNeg, X: x}, nil
		case token.ADD:
			return x, nil
		default:
			return nil, p.errorf(n.OpPos, "unsupported unary operator %s", n.Op)
		}

	case *ast.SelectorExpr:
		x, err := p.convert(n.X)
		if err != nil {
			return nil, err
		}
		name, _, err := ast.LabelName(n.Sel)
		if err != nil {
			return nil, p.errorf(n.Sel.Pos(), "invalid field name: %v", err)
		}
		return Member{X: x, Name: name}, nil

	case *ast.IndexExpr:
		x, err := p.convert(n.X)
		if err != nil {
			return nil, err
		}
		lit, ok := n.Index.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return nil, p.errorf(n.Index.Pos(), "field index must be a string literal")
		}
		name, err := literal.Unquote(lit.Value)
		if err != nil {
			return nil, p.errorf(lit.Pos(), "invalid string literal: %v", err)
		}
		return Member{X: x, Name: name}, nil

	case *ast.Ident:
		return p.ident(n)

	case *ast.BasicLit:
		return p.literal(n)

	case *ast.CallExpr:
		fun, ok := n.Fun.(*ast.Ident)
		if !ok {
			return nil, p.errorf(n.Fun.Pos(), "only named functions can be called")
		}
		fn, ok := p.opts.Funcs[fun.Name]
		if !ok {
			return nil, p.errorf(fun.Pos(), "unknown function %q", fun.Name)
		}
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			x, err := p.convert(a)
			if err != nil {
				return nil, err
			}
			args[i] = x
		}
		return Call{Name: fun.Name, Fn: fn, Args: args}, nil

	default:
		return nil, p.errorf(node.Pos(), "unsupported expression %T", node)
	}
}

func (p *exprParser) ident(n *ast.Ident) (Expr, error) {
	switch n.Name {
	case "true":
		return Value(ir.IRBool(true)), nil
	case "false":
		return Value(ir.IRBool(false)), nil
	case "null":
		return Value(ir.IRNull{}), nil
	case p.param:
		return Param{Name: p.param}, nil
	}
	if v, ok := p.opts.Vars[n.Name]; ok {
		value := v
		return Var{Name: n.Name, Get: func() (ir.IRValue, error) { return value, nil }}, nil
	}
	return nil, p.errorf(n.Pos(), "unknown identifier %q", n.Name)
}

func (p *exprParser) literal(n *ast.BasicLit) (Expr, error) {
	switch n.Kind {
	case token.INT:
		i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64)
		if err != nil {
			return nil, p.errorf(n.Pos(), "invalid integer literal %s", n.Value)
		}
		return Value(ir.IRInt(i)), nil
	case token.FLOAT:
		return nil, p.errorf(n.Pos(), "float literal %s is forbidden - use int instead", n.Value)
	case token.STRING:
		if strings.HasPrefix(n.Value, "'") {
			return nil, p.errorf(n.Pos(), "bytes literals are not supported")
		}
		s, err := literal.Unquote(n.Value)
		if err != nil {
			return nil, p.errorf(n.Pos(), "invalid string literal: %v", err)
		}
		return Value(ir.IRString(s)), nil
	case token.TRUE:
		return Value(ir.IRBool(true)), nil
	case token.FALSE:
		return Value(ir.IRBool(false)), nil
	case token.NULL:
		return Value(ir.IRNull{}), nil
	default:
		return nil, p.errorf(n.Pos(), "unsupported literal %s", n.Value)
	}
}

func (p *exprParser) errorf(pos token.Pos, format string, args ...any) error {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// parseErrorFrom converts a CUE syntax error, keeping the first position.
func parseErrorFrom(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ParseError{Message: err.Error()}
	}
	first := errs[0]
	pe := &ParseError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		pe.Pos = positions[0]
	}
	return pe
}
