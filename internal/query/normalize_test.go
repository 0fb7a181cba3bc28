package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/schema"
)

func boxOf(src string) Box {
	return Box{Body: expr.MustParse(src, expr.Options{}), Param: expr.DefaultParam}
}

func TestNormalize_Rules(t *testing.T) {
	cross := boxOf("r.a < r.b")

	tests := []struct {
		name string
		in   Expression
		want Expression
	}{
		{
			name: "distributes and over or",
			in:   and(or(eq("a", 1), eq("b", 2)), eq("c", 3)),
			want: or(and(eq("a", 1), eq("c", 3)), and(eq("b", 2), eq("c", 3))),
		},
		{
			name: "double negation",
			in:   Not{Term: Not{Term: cross}},
			want: cross,
		},
		{
			name: "de morgan over and",
			in:   Not{Term: and(eq("a", 1), eq("b", 2))},
			want: or(ne("a", 1), ne("b", 2)),
		},
		{
			name: "de morgan over or",
			in:   Not{Term: or(eq("a", 1), lt("b", 2))},
			want: and(ne("a", 1), ge("b", 2)),
		},
		{
			name: "negated null test is not null",
			in:   Not{Term: isNull("n")},
			want: NotNull(fld("n")),
		},
		{
			name: "null equality is a null test",
			in:   Equality{Field: fld("n")},
			want: isNull("n"),
		},
		{
			name: "negated not null is a null test",
			in:   Not{Term: NotNull(fld("n"))},
			want: isNull("n"),
		},
		{
			name: "null test on non-nullable field",
			in:   isNull("a"),
			want: False,
		},
		{
			name: "null equality on non-nullable field",
			in:   Equality{Field: fld("a")},
			want: False,
		},
		{
			name: "not null on non-nullable field",
			in:   Not{Term: isNull("a")},
			want: True,
		},
		{
			name: "inequality with null on non-nullable field",
			in:   and(NotNull(fld("a")), lt("a", 4)),
			want: lt("a", 4),
		},
		{
			name: "negated box stays wrapped",
			in:   Not{Term: cross},
			want: Not{Term: cross},
		},
		{
			name: "negated sentinel",
			in:   Not{Term: True},
			want: False,
		},
		{
			name: "flattens nested and",
			in:   and(and(eq("c", 1), eq("b", 1)), eq("a", 1)),
			want: and(eq("a", 1), eq("b", 1), eq("c", 1)),
		},
		{
			name: "flattens nested or",
			in:   or(eq("c", 1), or(eq("b", 1), eq("a", 1))),
			want: or(eq("a", 1), eq("b", 1), eq("c", 1)),
		},
		{
			name: "single term collapses",
			in:   and(or(eq("a", 1))),
			want: eq("a", 1),
		},
		{
			name: "empty and is true",
			in:   and(),
			want: True,
		},
		{
			name: "empty or is false",
			in:   or(),
			want: False,
		},
		{
			name: "true is neutral in and",
			in:   and(True, eq("a", 1)),
			want: eq("a", 1),
		},
		{
			name: "false dominates and",
			in:   and(False, eq("a", 1)),
			want: False,
		},
		{
			name: "true dominates or",
			in:   or(eq("a", 1), True),
			want: True,
		},
		{
			name: "term and negation in and",
			in:   and(cross, Not{Term: cross}),
			want: False,
		},
		{
			name: "term and negation in or",
			in:   or(Not{Term: cross}, cross),
			want: True,
		},
		{
			name: "deduplicates",
			in:   or(cross, eq("a", 1), cross),
			want: or(eq("a", 1), cross),
		},
		{
			name: "merges same-field intersection with split",
			in:   and(ge("a", 10), lt("a", 20), ne("a", 15)),
			want: or(closedOpen("a", 10, 15), open("a", 15, 20)),
		},
		{
			name: "merges same-field union",
			in:   or(lt("a", 5), closed("a", 5, 9), eq("b", 1)),
			want: or(le("a", 9), eq("b", 1)),
		},
		{
			name: "empty intersection collapses and",
			in:   and(eq("a", 1), eq("a", 2), eq("b", 3)),
			want: False,
		},
		{
			name: "full range is true",
			in:   full("a"),
			want: True,
		},
		{
			name: "full range is neutral",
			in:   and(full("a"), eq("b", 1)),
			want: eq("b", 1),
		},
		{
			name: "point range is equality",
			in:   closed("a", 5, 5),
			want: eq("a", 5),
		},
		{
			name: "empty range is false",
			in:   open("a", 5, 5),
			want: False,
		},
		{
			name: "absorption",
			in:   or(and(eq("a", 1), eq("b", 2)), eq("a", 1)),
			want: eq("a", 1),
		},
		{
			name: "not null merges with range",
			in:   and(Not{Term: isNull("n")}, ge("n", 3)),
			want: ge("n", 3),
		},
		{
			name: "null test contradicts not null",
			in:   and(isNull("n"), Not{Term: isNull("n")}),
			want: False,
		},
		{
			name: "negated range",
			in:   Not{Term: ge("a", 5)},
			want: lt("a", 5),
		},
		{
			name: "negated nullable range",
			in:   Not{Term: ge("n", 5)},
			want: or(isNull("n"), lt("n", 5)),
		},
		{
			name: "boxes only take part structurally",
			in:   and(cross, eq("a", 1), ge("a", 0)),
			want: and(eq("a", 1), cross),
		},
		{
			name: "two exclusions",
			in:   and(ne("a", 3), ne("a", 5)),
			want: or(lt("a", 3), open("a", 3, 5), gt("a", 5)),
		},
		{
			name: "excluded point of a half line pair",
			in:   or(lt("a", 3), gt("a", 3)),
			want: ne("a", 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.True(t, Equal(tt.want, got), "want %s\n got %s", tt.want, got)
			assert.True(t, Equal(got, Normalize(got)), "not a fixed point: %s", got)
		})
	}
}

func TestNormalize_Grouping(t *testing.T) {
	notNullA := Equality{Field: fld("a"), Inverted: true}
	tests := []struct {
		name   string
		shapes []Expression
		want   Expression
	}{
		{
			name: "mixed tree",
			shapes: []Expression{
				or(and(eq("b", 1), lt("a", 4)), isNull("n"), boxOf("r.a < r.b")),
				or(boxOf("r.a < r.b"), isNull("n"), and(lt("a", 4), eq("b", 1))),
			},
		},
		{
			name: "null tests on a non-nullable field",
			shapes: []Expression{
				and(and(ne("a", 4), notNullA), isNull("a")),
				and(isNull("a"), notNullA, ne("a", 4)),
				and(ne("a", 4), and(isNull("a"), notNullA)),
			},
			want: False,
		},
		{
			name: "null tests on a nullable field",
			shapes: []Expression{
				and(and(ne("n", 4), NotNull(fld("n"))), ge("n", 2)),
				and(ge("n", 2), NotNull(fld("n")), ne("n", 4)),
				and(Not{Term: isNull("n")}, and(ge("n", 2), ne("n", 4))),
			},
			want: or(Range{Field: fld("n"), From: iv(2), To: iv(4), FromInclusive: true}, gt("n", 4)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want
			if want == nil {
				want = Normalize(tt.shapes[0])
			}
			for _, in := range tt.shapes {
				got := Normalize(in)
				assert.True(t, Equal(want, got), "%s\nwant %s\n got %s", in, want, got)
			}
		})
	}
}

func TestNormalize_DNFGrowth(t *testing.T) {
	// n independent Or pairs under one And expand to 2^n branches.
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("pairs=%d", n), func(t *testing.T) {
			b := schema.NewBuilder("Wide")
			for i := 0; i < 2*n; i++ {
				b.Add(schema.FieldSpec{Name: fmt.Sprintf("f%d", i), Kind: schema.KindInt})
			}
			m := b.MustBuild()
			fields := m.Fields()

			groups := make([]Expression, n)
			for i := range groups {
				groups[i] = or(
					Equality{Field: fields[2*i], Value: iv(1)},
					Equality{Field: fields[2*i+1], Value: iv(1)},
				)
			}

			got := Normalize(and(groups...))
			branches := Disjuncts(got)
			require.Len(t, branches, 1<<n)
			for _, br := range branches {
				assert.Len(t, Conjuncts(br), n)
			}
		})
	}
}

func TestNormalize_PanicsOnUnknownNode(t *testing.T) {
	assert.Panics(t, func() { Normalize(nil) })
}
