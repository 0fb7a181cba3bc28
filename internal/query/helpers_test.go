package query

import (
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

// testModel declares a, b and c (ints) first so their IDs order them, then
// a nullable int n, a hash-indexed string s, a bool flag and an unindexed
// string label.
var testModel = schema.NewBuilder("T").
	Add(schema.FieldSpec{Name: "a", Kind: schema.KindInt, Index: schema.IndexOrdered}).
	Add(schema.FieldSpec{Name: "b", Kind: schema.KindInt}).
	Add(schema.FieldSpec{Name: "c", Kind: schema.KindInt}).
	Add(schema.FieldSpec{Name: "n", Kind: schema.KindInt, Nullable: true}).
	Add(schema.FieldSpec{Name: "s", Kind: schema.KindString, Index: schema.IndexHash}).
	Add(schema.FieldSpec{Name: "flag", Kind: schema.KindBool}).
	Add(schema.FieldSpec{Name: "label", Kind: schema.KindString}).
	MustBuild()

func fld(name string) schema.Field {
	f, ok := testModel.Lookup(name)
	if !ok {
		panic("unknown test field " + name)
	}
	return f
}

func iv(v int) ir.IRValue { return ir.IRInt(int64(v)) }

// closed, open, and friends build ranges on field f.
func closed(f string, lo, hi int) Range {
	return Range{Field: fld(f), From: iv(lo), To: iv(hi), FromInclusive: true, ToInclusive: true}
}

func open(f string, lo, hi int) Range {
	return Range{Field: fld(f), From: iv(lo), To: iv(hi)}
}

func openClosed(f string, lo, hi int) Range {
	return Range{Field: fld(f), From: iv(lo), To: iv(hi), ToInclusive: true}
}

func closedOpen(f string, lo, hi int) Range {
	return Range{Field: fld(f), From: iv(lo), To: iv(hi), FromInclusive: true}
}

func lt(f string, v int) Range { return Range{Field: fld(f), To: iv(v)} }
func le(f string, v int) Range { return Range{Field: fld(f), To: iv(v), ToInclusive: true} }
func gt(f string, v int) Range { return Range{Field: fld(f), From: iv(v)} }
func ge(f string, v int) Range { return Range{Field: fld(f), From: iv(v), FromInclusive: true} }
func full(f string) Range      { return Range{Field: fld(f)} }

func eq(f string, v int) Equality { return Equality{Field: fld(f), Value: iv(v)} }
func ne(f string, v int) Equality { return Equality{Field: fld(f), Value: iv(v), Inverted: true} }

func isNull(f string) IsNull { return IsNull{Field: fld(f)} }

func or(terms ...Expression) Or   { return Or{Terms: terms} }
func and(terms ...Expression) And { return And{Terms: terms} }

func strv(s string) ir.IRValue { return ir.IRString(s) }
func boolv(b bool) ir.IRValue  { return ir.IRBool(b) }
