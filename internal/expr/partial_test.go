package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/ir"
)

func TestPartialEval_FoldsConstantSubtrees(t *testing.T) {
	limit := Var{Name: "limit", Get: func() (ir.IRValue, error) { return ir.IRInt(10), nil }}
	e := Binary{
		Op:    OpAnd,
		Left:  Compare(OpGt, Field("r", "age"), Binary{Op: OpAdd, Left: limit, Right: Value(ir.IRInt(8))}),
		Right: Compare(OpEq, Value(ir.IRString("x")), Value(ir.IRString("x"))),
	}

	got, err := PartialEval(e, "r")
	require.NoError(t, err)

	want := Binary{
		Op:    OpAnd,
		Left:  Compare(OpGt, Field("r", "age"), Value(ir.IRInt(18))),
		Right: Value(ir.IRBool(true)),
	}
	assert.True(t, Equal(want, got), "got %s", got)
}

func TestPartialEval_ReadsVariablesOnce(t *testing.T) {
	calls := 0
	v := Var{Name: "n", Get: func() (ir.IRValue, error) {
		calls++
		return ir.IRInt(calls), nil
	}}

	got, err := PartialEval(Compare(OpEq, Field("r", "age"), v), "r")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "r.age == 1", got.String())
}

func TestPartialEval_KeepsCallsOverParameter(t *testing.T) {
	length := Func(func(args []ir.IRValue) (ir.IRValue, error) {
		s, _ := args[0].(ir.IRString)
		return ir.IRInt(len(s)), nil
	})
	e := Compare(OpGt,
		Call{Name: "len", Fn: length, Args: []Expr{Field("r", "name")}},
		Call{Name: "len", Fn: length, Args: []Expr{Value(ir.IRString("abc"))}},
	)

	got, err := PartialEval(e, "r")
	require.NoError(t, err)
	assert.Equal(t, "len(r.name) > 3", got.String())

	ok, err := EvalBool(got, Bind("r", ir.IRObject{"name": ir.IRString("alice")}))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPartialEval_PropagatesErrors(t *testing.T) {
	sentinel := errors.New("lookup failed")
	v := Var{Name: "bad", Get: func() (ir.IRValue, error) { return nil, sentinel }}

	got, err := PartialEval(Compare(OpEq, Field("r", "name"), v), "r")
	assert.Nil(t, got)
	require.ErrorIs(t, err, sentinel)

	_, err = PartialEval(Compare(OpEq, Field("r", "age"), Binary{Op: OpDiv, Left: Value(ir.IRInt(1)), Right: Value(ir.IRInt(0))}), "r")
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Message, "division by zero")
}

func TestPartialEval_ParameterOnlyTreeUnchanged(t *testing.T) {
	e := Unary{Op: OpNot, X: Compare(OpLt, Field("r", "a"), Field("r", "b"))}
	got, err := PartialEval(e, "r")
	require.NoError(t, err)
	assert.True(t, Equal(e, got))
}
