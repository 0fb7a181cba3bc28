package index

import (
	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/query"
	"github.com/roach88/docstore/internal/schema"
)

// HashClassifier accepts == and != comparisons. Null tests become the
// Equality form so the index answers them from its null bucket.
type HashClassifier struct{}

// TryConvert implements query.Classifier.
func (HashClassifier) TryConvert(cmp expr.Binary, _ string, field schema.Field) (query.Atomic, bool) {
	v, ok := expr.ConstOf(cmp.Right)
	if !ok {
		return nil, false
	}
	eq, ok := query.EqualityOf(field, cmp.Op, v)
	if !ok {
		return nil, false
	}
	return eq, true
}

// OrderedClassifier accepts equality and ordering comparisons.
type OrderedClassifier struct{}

// TryConvert implements query.Classifier.
func (OrderedClassifier) TryConvert(cmp expr.Binary, _ string, field schema.Field) (query.Atomic, bool) {
	v, ok := expr.ConstOf(cmp.Right)
	if !ok {
		return nil, false
	}
	if eq, ok := query.EqualityOf(field, cmp.Op, v); ok {
		return eq, true
	}
	if r, ok := query.RangeOf(field, cmp.Op, v); ok {
		return r, true
	}
	return nil, false
}

// ClassifierFor returns the classifier for an index kind, or nil for
// IndexNone.
func ClassifierFor(kind schema.IndexKind) query.Classifier {
	switch kind {
	case schema.IndexHash:
		return HashClassifier{}
	case schema.IndexOrdered:
		return OrderedClassifier{}
	default:
		return nil
	}
}

// Classifiers builds the converter registry from the model's index
// declarations.
func Classifiers(m *schema.Model) map[schema.FieldID]query.Classifier {
	out := make(map[schema.FieldID]query.Classifier)
	for _, f := range m.Fields() {
		if c := ClassifierFor(f.Index); c != nil {
			out[f.ID] = c
		}
	}
	return out
}
