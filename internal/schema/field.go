package schema

import (
	"fmt"

	"github.com/roach88/docstore/internal/ir"
)

// FieldID is the interned identity of a declared field.
type FieldID uint32

// Kind is the scalar type of a field.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindBool
)

// String returns the schema spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Ordered reports whether range constraints make sense for the kind.
// Bools compare (false < true) but are not treated as ordered fields.
func (k Kind) Ordered() bool {
	return k == KindString || k == KindInt
}

// Accepts reports whether a non-null constant has this kind.
func (k Kind) Accepts(v ir.IRValue) bool {
	switch v.(type) {
	case ir.IRString:
		return k == KindString
	case ir.IRInt:
		return k == KindInt
	case ir.IRBool:
		return k == KindBool
	default:
		return false
	}
}

// ParseKind parses a schema type name.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "string":
		return KindString, true
	case "int":
		return KindInt, true
	case "bool":
		return KindBool, true
	default:
		return 0, false
	}
}

// IndexKind selects the index that classifies comparisons on a field.
type IndexKind int

const (
	IndexNone IndexKind = iota
	IndexHash
	IndexOrdered
)

// String returns the schema spelling of the index kind.
func (k IndexKind) String() string {
	switch k {
	case IndexNone:
		return "none"
	case IndexHash:
		return "hash"
	case IndexOrdered:
		return "ordered"
	default:
		return fmt.Sprintf("IndexKind(%d)", int(k))
	}
}

// ParseIndexKind parses an index kind name.
func ParseIndexKind(s string) (IndexKind, bool) {
	switch s {
	case "", "none":
		return IndexNone, true
	case "hash":
		return IndexHash, true
	case "ordered", "btree":
		return IndexOrdered, true
	default:
		return 0, false
	}
}

// Field is a resolved reference to a declared model field.
// Fields are small values; compare them with Same, not by name.
type Field struct {
	ID       FieldID
	Name     string
	Kind     Kind
	Nullable bool
	Index    IndexKind
}

// Same reports whether f and other denote the same declared field.
func (f Field) Same(other Field) bool {
	return f.ID == other.ID
}

// String returns the field name.
func (f Field) String() string {
	return f.Name
}
