package index

import (
	"maps"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/query"
	"github.com/roach88/docstore/internal/schema"
)

// HashIndex buckets records by the content hash of their field value.
// It answers equality, inequality and null tests.
type HashIndex struct {
	field   schema.Field
	buckets map[string]map[DocID]struct{}
	docs    map[DocID]string
}

// NewHash creates an empty hash index on f.
func NewHash(f schema.Field) *HashIndex {
	return &HashIndex{
		field:   f,
		buckets: make(map[string]map[DocID]struct{}),
		docs:    make(map[DocID]string),
	}
}

// Field returns the indexed field.
func (h *HashIndex) Field() schema.Field { return h.field }

// Len returns the number of indexed records.
func (h *HashIndex) Len() int { return len(h.docs) }

// Insert indexes id under value, replacing any previous value for id.
func (h *HashIndex) Insert(id DocID, value ir.IRValue) error {
	if err := checkKind(h.field, value); err != nil {
		return err
	}
	key, err := ir.RecordHash(normalizeNull(value))
	if err != nil {
		return err
	}
	h.Remove(id)
	bucket, ok := h.buckets[key]
	if !ok {
		bucket = make(map[DocID]struct{})
		h.buckets[key] = bucket
	}
	bucket[id] = struct{}{}
	h.docs[id] = key
	return nil
}

// Remove drops id from the index.
func (h *HashIndex) Remove(id DocID) {
	key, ok := h.docs[id]
	if !ok {
		return
	}
	delete(h.docs, id)
	bucket := h.buckets[key]
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(h.buckets, key)
	}
}

// Lookup answers Equality and IsNull constraints. Ranges are refused.
func (h *HashIndex) Lookup(atom query.Atomic) ([]DocID, bool) {
	if !atom.FieldRef().Same(h.field) {
		return nil, false
	}
	switch a := atom.(type) {
	case query.Equality:
		hit := h.bucket(a.Value)
		if !a.Inverted {
			return sortedIDs(hit), true
		}
		rest := make(map[DocID]struct{}, len(h.docs))
		for id := range h.docs {
			if _, ok := hit[id]; !ok {
				rest[id] = struct{}{}
			}
		}
		return sortedIDs(rest), true
	case query.IsNull:
		return sortedIDs(h.bucket(ir.IRNull{})), true
	default:
		return nil, false
	}
}

func (h *HashIndex) bucket(v ir.IRValue) map[DocID]struct{} {
	key, err := ir.RecordHash(normalizeNull(v))
	if err != nil {
		return nil
	}
	return maps.Clone(h.buckets[key])
}

func normalizeNull(v ir.IRValue) ir.IRValue {
	if ir.IsNull(v) {
		return ir.IRNull{}
	}
	return v
}
