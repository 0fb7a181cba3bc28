package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/ir"
)

func person() Env {
	return Bind("r", ir.IRObject{
		"name":  ir.IRString("alice"),
		"age":   ir.IRInt(30),
		"admin": ir.IRBool(true),
	})
}

func TestEvalBool_Comparisons(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want bool
	}{
		{"eq", Compare(OpEq, Field("r", "age"), Value(ir.IRInt(30))), true},
		{"ne", Compare(OpNe, Field("r", "age"), Value(ir.IRInt(30))), false},
		{"lt", Compare(OpLt, Field("r", "age"), Value(ir.IRInt(31))), true},
		{"le", Compare(OpLe, Field("r", "age"), Value(ir.IRInt(30))), true},
		{"gt", Compare(OpGt, Field("r", "name"), Value(ir.IRString("bob"))), false},
		{"ge", Compare(OpGe, Field("r", "name"), Value(ir.IRString("alice"))), true},
		{"missing field equals null", Compare(OpEq, Field("r", "email"), Value(ir.IRNull{})), true},
		{"missing field not equal value", Compare(OpNe, Field("r", "email"), Value(ir.IRString("x"))), true},
		{"ordering against null is false", Compare(OpLt, Field("r", "email"), Value(ir.IRString("x"))), false},
		{"mixed kinds are never equal", Compare(OpEq, Field("r", "age"), Value(ir.IRString("30"))), false},
		{"and", Binary{Op: OpAnd, Left: Field("r", "admin"), Right: Compare(OpGt, Field("r", "age"), Value(ir.IRInt(18)))}, true},
		{"or short-circuits", Binary{Op: OpOr, Left: Field("r", "admin"), Right: Field("r", "name")}, true},
		{"not", Unary{Op: OpNot, X: Field("r", "admin")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalBool(tt.expr, person())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Arithmetic(t *testing.T) {
	e := Binary{Op: OpAdd, Left: Field("r", "age"), Right: Binary{Op: OpMul, Left: Value(ir.IRInt(2)), Right: Value(ir.IRInt(3))}}
	v, err := Eval(e, person())
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(36), v)

	v, err = Eval(Binary{Op: OpAdd, Left: Value(ir.IRString("a")), Right: Value(ir.IRString("b"))}, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("ab"), v)

	v, err = Eval(Unary{Op: OpNeg, X: Value(ir.IRInt(4))}, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(-4), v)
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name    string
		expr    Expr
		wantMsg string
	}{
		{"division by zero", Binary{Op: OpDiv, Left: Value(ir.IRInt(1)), Right: Value(ir.IRInt(0))}, "division by zero"},
		{"ordering mixed kinds", Compare(OpLt, Field("r", "age"), Value(ir.IRString("x"))), "cannot compare int with string"},
		{"not on int", Unary{Op: OpNot, X: Field("r", "age")}, "operator ! on int"},
		{"arithmetic on null", Binary{Op: OpSub, Left: Field("r", "email"), Right: Value(ir.IRInt(1))}, "operator - on null"},
		{"unbound parameter", Field("q", "age"), `unbound parameter "q"`},
		{"field access on scalar", Member{X: Field("r", "age"), Name: "x"}, "field access on int"},
		{"non-bool result", Field("r", "age"), "expected bool, got int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvalBool(tt.expr, person())
			require.Error(t, err)

			var ee *EvalError
			require.ErrorAs(t, err, &ee)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestEval_WrapsCauses(t *testing.T) {
	sentinel := errors.New("backend unavailable")

	v := Var{Name: "limit", Get: func() (ir.IRValue, error) { return nil, sentinel }}
	_, err := Eval(v, nil)
	assert.ErrorIs(t, err, sentinel)

	c := Call{Name: "boom", Fn: func([]ir.IRValue) (ir.IRValue, error) { return nil, sentinel }}
	_, err = Eval(c, nil)
	assert.ErrorIs(t, err, sentinel)

	_, err = Eval(Compare(OpLt, Value(ir.IRInt(1)), Value(ir.IRBool(true))), nil)
	var ce *ir.CompareError
	assert.ErrorAs(t, err, &ce)
}

func TestEval_NestedMemberOnNull(t *testing.T) {
	e := Member{X: Field("r", "address"), Name: "city"}
	v, err := Eval(e, person())
	require.NoError(t, err)
	assert.Equal(t, ir.IRNull{}, v)
}
