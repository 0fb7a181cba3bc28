package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

func convert(t *testing.T, c *Converter, src string) Expression {
	t.Helper()
	e, err := expr.Parse(src, expr.Options{Vars: map[string]ir.IRValue{"limit": ir.IRInt(7)}})
	require.NoError(t, err)
	e, err = expr.PartialEval(e, "r")
	require.NoError(t, err)
	return c.Convert(e, "r")
}

func TestConverter_Comparisons(t *testing.T) {
	c := NewConverter(testModel)

	tests := []struct {
		src  string
		want Expression
	}{
		{`r.a > 5`, gt("a", 5)},
		{`r.a >= 5`, ge("a", 5)},
		{`r.a < 5`, lt("a", 5)},
		{`r.a <= 5`, le("a", 5)},
		{`5 < r.a`, gt("a", 5)},
		{`10 >= r.a`, le("a", 10)},
		{`r.a == 3`, eq("a", 3)},
		{`3 != r.a`, ne("a", 3)},
		{`r.a < limit + 1`, lt("a", 8)},
		{`r.n == null`, isNull("n")},
		{`null != r.n`, Not{Term: isNull("n")}},
		{`r.s >= "m"`, Range{Field: fld("s"), From: strv("m"), FromInclusive: true}},
		{`r.flag == true`, Equality{Field: fld("flag"), Value: boolv(true)}},
		{`true`, True},
		{`1 == 2`, False},
		{`r.a > 1 && !(r.b == 2)`, and(gt("a", 1), Not{Term: eq("b", 2)})},
		{`r.a > 1 || r.b == 2`, or(gt("a", 1), eq("b", 2))},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := convert(t, c, tt.src)
			assert.True(t, Equal(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestConverter_Boxes(t *testing.T) {
	c := NewConverter(testModel)

	for _, src := range []string{
		`r.n < null`,
		`r.flag > false`,
		`r.a == "x"`,
		`r.missing == 1`,
		`r.a == r.b`,
		`r.a + 1 > 3`,
		`r.flag`,
		`-r.a == 3`,
	} {
		t.Run(src, func(t *testing.T) {
			got := convert(t, c, src)
			box, ok := got.(Box)
			require.True(t, ok, "got %s", got)
			assert.False(t, box.Pushable())
			assert.Equal(t, "r", box.Param)
		})
	}
}

// equalityOnly accepts == and != like a hash index would.
type equalityOnly struct{}

func (equalityOnly) TryConvert(cmp expr.Binary, param string, field schema.Field) (Atomic, bool) {
	v, _ := expr.ConstOf(cmp.Right)
	eq, ok := EqualityOf(field, cmp.Op, v)
	return eq, ok
}

func TestConverter_UsesClassifiers(t *testing.T) {
	c := &Converter{
		Model:       testModel,
		Classifiers: map[schema.FieldID]Classifier{fld("s").ID: equalityOnly{}},
	}

	got := convert(t, c, `"x" == r.s`)
	assert.True(t, Equal(Equality{Field: fld("s"), Value: strv("x")}, got), "got %s", got)

	got = convert(t, c, `r.s == null`)
	assert.True(t, Equal(Equality{Field: fld("s")}, got), "got %s", got)

	got = convert(t, c, `r.s > "x"`)
	_, isBox := got.(Box)
	assert.True(t, isBox, "declined comparison should be boxed, got %s", got)

	// Fields without a classifier keep the generic rules.
	got = convert(t, c, `r.a > 1`)
	assert.True(t, Equal(gt("a", 1), got), "got %s", got)
}

func TestComparison(t *testing.T) {
	_, ok := Comparison(fld("a"), expr.OpAdd, iv(1))
	assert.False(t, ok)

	r, ok := RangeOf(fld("flag"), expr.OpLt, boolv(true))
	assert.False(t, ok)
	assert.Equal(t, Range{}, r)

	e, ok := EqualityOf(fld("n"), expr.OpNe, ir.IRNull{})
	require.True(t, ok)
	assert.True(t, e.IsNullTest())
	assert.True(t, e.Inverted)
}
