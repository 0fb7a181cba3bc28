package expr

import "github.com/roach88/docstore/internal/ir"

// Expr is a node of a raw predicate tree.
//
// This is a sealed interface. Only the node types in this package implement
// it, which keeps type switches over Expr exhaustive.
type Expr interface {
	exprNode()
	String() string
}

// Param references a bound parameter, normally the record being filtered.
type Param struct {
	Name string
}

// Member accesses a named field of X.
type Member struct {
	X    Expr
	Name string
}

// Const holds an evaluated value.
type Const struct {
	Value ir.IRValue
}

// Var is a captured variable. Get is called at partial evaluation time, so
// a variable behaves as a constant for one compilation.
type Var struct {
	Name string
	Get  func() (ir.IRValue, error)
}

// Unary applies OpNot or OpNeg to X.
type Unary struct {
	Op Op
	X  Expr
}

// Binary applies a logical, comparison or arithmetic operator.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

// Call invokes a registered function. Calls are treated as pure: a call
// whose arguments are all constant is folded by PartialEval.
type Call struct {
	Name string
	Fn   Func
	Args []Expr
}

// Func is the signature of a function callable from a predicate.
type Func func(args []ir.IRValue) (ir.IRValue, error)

func (Param) exprNode()  {}
func (Member) exprNode() {}
func (Const) exprNode()  {}
func (Var) exprNode()    {}
func (Unary) exprNode()  {}
func (Binary) exprNode() {}
func (Call) exprNode()   {}

// Field returns a Member access on the named parameter.
func Field(param, name string) Member {
	return Member{X: Param{Name: param}, Name: name}
}

// Value wraps a value in a Const.
func Value(v ir.IRValue) Const {
	if v == nil {
		v = ir.IRNull{}
	}
	return Const{Value: v}
}

// Compare builds a comparison node.
func Compare(op Op, left, right Expr) Binary {
	return Binary{Op: op, Left: left, Right: right}
}

// Op enumerates the unary and binary operators.
type Op int

const (
	OpInvalid Op = iota

	// Unary.
	OpNot
	OpNeg

	// Logical.
	OpAnd
	OpOr

	// Comparison.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
)

var opSymbols = [...]string{
	OpInvalid: "?",
	OpNot:     "!",
	OpNeg:     "-",
	OpAnd:     "&&",
	OpOr:      "||",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
}

// String returns the operator symbol.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opSymbols) {
		return "?"
	}
	return opSymbols[op]
}

// IsComparison reports whether op is one of ==, !=, <, <=, >, >=.
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// IsOrdering reports whether op is one of <, <=, >, >=.
func (op Op) IsOrdering() bool {
	return op >= OpLt && op <= OpGe
}

// Mirror returns the operator that gives the same result with the operands
// swapped: a < b is b > a. Equality operators mirror to themselves.
func (op Op) Mirror() Op {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

// precedence follows the usual C-family binding strengths.
func (op Op) precedence() int {
	switch op {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return 3
	case OpAdd, OpSub:
		return 4
	case OpMul, OpDiv:
		return 5
	default:
		return 6
	}
}
