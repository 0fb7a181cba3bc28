package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
)

func TestEval(t *testing.T) {
	rec := ir.IRObject{"a": ir.IRInt(5), "b": ir.IRInt(9), "s": ir.IRString("m")}

	tests := []struct {
		name string
		e    Expression
		want bool
	}{
		{"range inside", closed("a", 1, 5), true},
		{"range exclusive bound", open("a", 1, 5), false},
		{"range on null", ge("n", 0), false},
		{"full range on null", full("n"), true},
		{"equality", eq("a", 5), true},
		{"inequality", ne("a", 5), false},
		{"inequality on null", ne("n", 5), true},
		{"null test", isNull("n"), true},
		{"null equality", Equality{Field: fld("n")}, true},
		{"not null", NotNull(fld("n")), false},
		{"and", and(eq("a", 5), gt("b", 8)), true},
		{"or", or(eq("a", 1), eq("b", 9)), true},
		{"not", Not{Term: eq("a", 5)}, false},
		{"box", boxOf("r.a < r.b"), true},
		{"true", True, true},
		{"false", False, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.e, rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_RangeKindMismatch(t *testing.T) {
	_, err := Eval(ge("a", 1), ir.IRObject{"a": ir.IRString("x")})
	var ce *ir.CompareError
	assert.ErrorAs(t, err, &ce)
}

func TestEval_NormalFormOnIncompleteRecords(t *testing.T) {
	trees := []Expression{
		Not{Term: lt("a", 18)},
		isNull("a"),
		and(Equality{Field: fld("a"), Inverted: true}, eq("b", 1)),
	}
	complete := ir.IRObject{"a": ir.IRInt(20), "b": ir.IRInt(1), "n": ir.IRInt(3)}
	missing := ir.IRObject{"b": ir.IRInt(1), "n": ir.IRInt(3)}

	for _, in := range trees {
		t.Run(in.String(), func(t *testing.T) {
			out := Normalize(in)

			want, err := Eval(in, complete)
			require.NoError(t, err)
			got, err := Eval(out, complete)
			require.NoError(t, err)
			assert.Equal(t, want, got, "complete record")

			want, err = Eval(in, missing)
			require.NoError(t, err)
			got, err = Eval(out, missing)
			require.NoError(t, err)
			assert.NotEqual(t, want, got, "record without a")
		})
	}
}

func TestToExpression_MatchesEval(t *testing.T) {
	atoms := []Atomic{
		closed("a", 2, 4), open("a", 2, 4), lt("a", 3), ge("a", 3), full("a"),
		eq("a", 3), ne("a", 3), isNull("n"), NotNull(fld("n")), ge("n", 1), ne("n", 2),
	}
	var records []ir.IRObject
	for v := 0; v <= 6; v++ {
		records = append(records, ir.IRObject{"a": iv(v), "n": iv(v)})
	}
	records = append(records, ir.IRObject{"a": iv(0)})

	for _, atom := range atoms {
		pred := atom.ToExpression("r")
		for _, rec := range records {
			want, err := Eval(atom, rec)
			require.NoError(t, err)
			got, err := expr.EvalBool(pred, expr.Bind("r", rec))
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s on %v", atom, rec)
		}
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "a in (10, 30]", openClosed("a", 10, 30).String())
	assert.Equal(t, "a >= 3", ge("a", 3).String())
	assert.Equal(t, "a < 3", lt("a", 3).String())
	assert.Equal(t, "a in (-inf, +inf)", full("a").String())
	assert.Equal(t, "a != 3", ne("a", 3).String())
	assert.Equal(t, "n != null", NotNull(fld("n")).String())
	assert.Equal(t, "not(n is null)", Not{Term: isNull("n")}.String())
	assert.Equal(t, "or(a == 1, and(b == 2, box(r.a < r.b)))", or(eq("a", 1), and(eq("b", 2), boxOf("r.a < r.b"))).String())
	assert.Equal(t, "true", True.String())
}
