package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/ir"
)

func TestBuilder_AssignsIDsInOrder(t *testing.T) {
	m := NewBuilder("Person").
		Add(FieldSpec{Name: "name", Kind: KindString}).
		Add(FieldSpec{Name: "age", Kind: KindInt, Index: IndexOrdered}).
		Add(FieldSpec{Name: "email", Kind: KindString, Nullable: true, Index: IndexHash}).
		MustBuild()

	assert.Equal(t, "Person", m.Name())

	fields := m.Fields()
	require.Len(t, fields, 3)
	for i, f := range fields {
		assert.Equal(t, FieldID(i), f.ID)
	}

	age, ok := m.Lookup("age")
	require.True(t, ok)
	assert.Equal(t, KindInt, age.Kind)
	assert.Equal(t, IndexOrdered, age.Index)
	assert.Equal(t, age, m.Field(age.ID))

	email, ok := m.Lookup("email")
	require.True(t, ok)
	assert.True(t, email.Nullable)

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestField_SameComparesIdentity(t *testing.T) {
	m := NewBuilder("Person").
		Add(FieldSpec{Name: "a", Kind: KindInt}).
		Add(FieldSpec{Name: "b", Kind: KindInt}).
		MustBuild()

	a1, _ := m.Lookup("a")
	a2, _ := m.Lookup("a")
	b, _ := m.Lookup("b")

	assert.True(t, a1.Same(a2))
	assert.False(t, a1.Same(b))
	assert.Equal(t, "a", a1.String())
}

func TestModel_FieldsReturnsCopy(t *testing.T) {
	m := NewBuilder("X").Add(FieldSpec{Name: "a", Kind: KindInt}).MustBuild()
	fields := m.Fields()
	fields[0].Name = "mutated"

	f, ok := m.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", f.Name)
}

func TestModel_FieldPanicsOnForeignID(t *testing.T) {
	m := NewBuilder("X").Add(FieldSpec{Name: "a", Kind: KindInt}).MustBuild()
	assert.Panics(t, func() { m.Field(FieldID(5)) })
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		wantMsg string
	}{
		{
			name:    "empty model name",
			builder: NewBuilder(" "),
			wantMsg: "model name is required",
		},
		{
			name:    "empty field name",
			builder: NewBuilder("X").Add(FieldSpec{Kind: KindInt}),
			wantMsg: "field name is required",
		},
		{
			name: "duplicate field",
			builder: NewBuilder("X").
				Add(FieldSpec{Name: "a", Kind: KindInt}).
				Add(FieldSpec{Name: "a", Kind: KindString}),
			wantMsg: "X.a: duplicate field",
		},
		{
			name:    "invalid kind",
			builder: NewBuilder("X").Add(FieldSpec{Name: "a"}),
			wantMsg: "invalid kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.Error(t, err)

			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestKind(t *testing.T) {
	assert.True(t, KindInt.Ordered())
	assert.True(t, KindString.Ordered())
	assert.False(t, KindBool.Ordered())

	assert.True(t, KindInt.Accepts(ir.IRInt(1)))
	assert.False(t, KindInt.Accepts(ir.IRString("1")))
	assert.True(t, KindBool.Accepts(ir.IRBool(false)))
	assert.False(t, KindString.Accepts(ir.IRNull{}))

	k, ok := ParseKind("string")
	assert.True(t, ok)
	assert.Equal(t, KindString, k)
	_, ok = ParseKind("float")
	assert.False(t, ok)
}

func TestParseIndexKind(t *testing.T) {
	tests := map[string]IndexKind{
		"":        IndexNone,
		"none":    IndexNone,
		"hash":    IndexHash,
		"ordered": IndexOrdered,
		"btree":   IndexOrdered,
	}
	for input, want := range tests {
		got, ok := ParseIndexKind(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := ParseIndexKind("bitmap")
	assert.False(t, ok)
	assert.Equal(t, "ordered", IndexOrdered.String())
}
