package index

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/query"
	"github.com/roach88/docstore/internal/schema"
)

// DocID identifies a record within a collection.
type DocID uint64

// Index answers atomic constraints on one field.
type Index interface {
	Field() schema.Field
	Insert(id DocID, value ir.IRValue) error
	Remove(id DocID)
	Len() int

	// Lookup returns the matching ids in ascending order, or false when the
	// constraint is not answerable by this index.
	Lookup(atom query.Atomic) ([]DocID, bool)
}

// New returns the reference index for a field's declared index kind.
func New(f schema.Field) (Index, error) {
	switch f.Index {
	case schema.IndexHash:
		return NewHash(f), nil
	case schema.IndexOrdered:
		if !f.Kind.Ordered() {
			return nil, fmt.Errorf("index %s: ordered index on %s field", f.Name, f.Kind)
		}
		return NewOrdered(f), nil
	default:
		return nil, fmt.Errorf("index %s: field has no index", f.Name)
	}
}

// Set holds the indexes of one model.
type Set struct {
	indexes map[schema.FieldID]Index
}

// NewSet creates an index for every indexed field of m.
func NewSet(m *schema.Model) (*Set, error) {
	s := &Set{indexes: make(map[schema.FieldID]Index)}
	for _, f := range m.Fields() {
		if f.Index == schema.IndexNone {
			continue
		}
		idx, err := New(f)
		if err != nil {
			return nil, err
		}
		s.indexes[f.ID] = idx
	}
	return s, nil
}

// Insert adds a record to every index.
func (s *Set) Insert(id DocID, record ir.IRObject) error {
	for _, idx := range s.indexes {
		if err := idx.Insert(id, record.Get(idx.Field().Name)); err != nil {
			return err
		}
	}
	return nil
}

// Remove drops a record from every index.
func (s *Set) Remove(id DocID) {
	for _, idx := range s.indexes {
		idx.Remove(id)
	}
}

// For returns the index on a field.
func (s *Set) For(f schema.Field) (Index, bool) {
	idx, ok := s.indexes[f.ID]
	return idx, ok
}

// Lookup answers an atomic constraint from the index on its field.
func (s *Set) Lookup(atom query.Atomic) ([]DocID, bool) {
	idx, ok := s.For(atom.FieldRef())
	if !ok {
		return nil, false
	}
	return idx.Lookup(atom)
}

func checkKind(f schema.Field, v ir.IRValue) error {
	if ir.IsNull(v) {
		if !f.Nullable {
			return fmt.Errorf("index %s: null value for non-nullable field", f.Name)
		}
		return nil
	}
	if !f.Kind.Accepts(v) {
		return fmt.Errorf("index %s: %s value for %s field", f.Name, ir.KindName(v), f.Kind)
	}
	return nil
}

func sortedIDs(set map[DocID]struct{}) []DocID {
	return slices.Sorted(maps.Keys(set))
}
