package query

import (
	"fmt"

	"github.com/roach88/docstore/internal/ir"
)

// Eval evaluates a tree against one record. Absent fields read as null.
//
// A tree and its normalized form agree on every record that holds a
// non-null value for each non-nullable field the tree refers to.
// Normalization assumes such fields are never null, so on a record missing
// one the two may differ: !(a < 18) normalizes to a >= 18, and a record
// without a matches only the first. Eval does not check records against
// the model.
func Eval(e Expression, record ir.IRObject) (bool, error) {
	switch n := e.(type) {
	case And:
		for _, t := range n.Terms {
			ok, err := Eval(t, record)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case Or:
		for _, t := range n.Terms {
			ok, err := Eval(t, record)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil

	case Not:
		ok, err := Eval(n.Term, record)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case IsNull:
		return ir.IsNull(record.Get(n.Field.Name)), nil

	case Equality:
		v := record.Get(n.Field.Name)
		return ir.Equal(v, n.Value) != n.Inverted, nil

	case Range:
		return n.matches(record.Get(n.Field.Name))

	case Box:
		return n.Matches(record)

	default:
		panic(unreachable(e))
	}
}

func (r Range) matches(v ir.IRValue) (bool, error) {
	if r.IsFull() {
		return true, nil
	}
	if ir.IsNull(v) {
		return false, nil
	}
	if !ir.IsNull(r.From) {
		c, err := ir.Compare(v, r.From)
		if err != nil {
			return false, fmt.Errorf("range on %s: %w", r.Field.Name, err)
		}
		if c < 0 || (c == 0 && !r.FromInclusive) {
			return false, nil
		}
	}
	if !ir.IsNull(r.To) {
		c, err := ir.Compare(v, r.To)
		if err != nil {
			return false, fmt.Errorf("range on %s: %w", r.Field.Name, err)
		}
		if c > 0 || (c == 0 && !r.ToInclusive) {
			return false, nil
		}
	}
	return true, nil
}
