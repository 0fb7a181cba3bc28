package index

import (
	"github.com/google/btree"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/query"
	"github.com/roach88/docstore/internal/schema"
)

const btreeDegree = 32

type entry struct {
	value ir.IRValue
	id    DocID
}

func lessEntry(a, b entry) bool {
	if c := ir.MustCompare(a.value, b.value); c != 0 {
		return c < 0
	}
	return a.id < b.id
}

// OrderedIndex keeps non-null values in a B-tree ordered by (value, id)
// and null values in a separate set.
type OrderedIndex struct {
	field schema.Field
	tree  *btree.BTreeG[entry]
	nulls map[DocID]struct{}
	docs  map[DocID]ir.IRValue
}

// NewOrdered creates an empty ordered index on f.
func NewOrdered(f schema.Field) *OrderedIndex {
	return &OrderedIndex{
		field: f,
		tree:  btree.NewG(btreeDegree, lessEntry),
		nulls: make(map[DocID]struct{}),
		docs:  make(map[DocID]ir.IRValue),
	}
}

// Field returns the indexed field.
func (o *OrderedIndex) Field() schema.Field { return o.field }

// Len returns the number of indexed records.
func (o *OrderedIndex) Len() int { return len(o.docs) }

// Insert indexes id under value, replacing any previous value for id.
func (o *OrderedIndex) Insert(id DocID, value ir.IRValue) error {
	if err := checkKind(o.field, value); err != nil {
		return err
	}
	o.Remove(id)
	if ir.IsNull(value) {
		o.nulls[id] = struct{}{}
		o.docs[id] = ir.IRNull{}
		return nil
	}
	o.tree.ReplaceOrInsert(entry{value: value, id: id})
	o.docs[id] = value
	return nil
}

// Remove drops id from the index.
func (o *OrderedIndex) Remove(id DocID) {
	v, ok := o.docs[id]
	if !ok {
		return
	}
	delete(o.docs, id)
	if ir.IsNull(v) {
		delete(o.nulls, id)
		return
	}
	o.tree.Delete(entry{value: v, id: id})
}

// Lookup answers Range, Equality and IsNull constraints.
func (o *OrderedIndex) Lookup(atom query.Atomic) ([]DocID, bool) {
	if !atom.FieldRef().Same(o.field) {
		return nil, false
	}
	hits := make(map[DocID]struct{})
	switch a := atom.(type) {
	case query.Range:
		if a.IsFull() {
			for id := range o.docs {
				hits[id] = struct{}{}
			}
			break
		}
		o.scan(a.From, a.FromInclusive, a.To, a.ToInclusive, hits)
	case query.Equality:
		switch {
		case a.IsNullTest() && !a.Inverted:
			o.addNulls(hits)
		case a.IsNullTest():
			o.scan(nil, false, nil, false, hits)
		case !a.Inverted:
			o.scan(a.Value, true, a.Value, true, hits)
		default:
			o.scan(nil, false, a.Value, false, hits)
			o.scan(a.Value, false, nil, false, hits)
			o.addNulls(hits)
		}
	case query.IsNull:
		o.addNulls(hits)
	default:
		return nil, false
	}
	return sortedIDs(hits), true
}

func (o *OrderedIndex) addNulls(hits map[DocID]struct{}) {
	for id := range o.nulls {
		hits[id] = struct{}{}
	}
}

// scan collects non-null entries between the bounds. A null bound is open.
func (o *OrderedIndex) scan(from ir.IRValue, fromInc bool, to ir.IRValue, toInc bool, hits map[DocID]struct{}) {
	visit := func(e entry) bool {
		if !ir.IsNull(to) {
			c := ir.MustCompare(e.value, to)
			if c > 0 || (c == 0 && !toInc) {
				return false
			}
		}
		if !ir.IsNull(from) && !fromInc && ir.MustCompare(e.value, from) == 0 {
			return true
		}
		hits[e.id] = struct{}{}
		return true
	}
	if ir.IsNull(from) {
		o.tree.Ascend(visit)
		return
	}
	o.tree.AscendGreaterOrEqual(entry{value: from, id: 0}, visit)
}
