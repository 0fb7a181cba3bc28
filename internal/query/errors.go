package query

import (
	"fmt"

	"github.com/roach88/docstore/internal/schema"
)

// FieldMismatchError is the panic value raised when two atomic constraints
// on different fields are combined. It signals a broken caller invariant.
type FieldMismatchError struct {
	Left  schema.Field
	Right schema.Field
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("query: cannot combine constraints on different fields %s (#%d) and %s (#%d)",
		e.Left.Name, e.Left.ID, e.Right.Name, e.Right.ID)
}

func sameField(a, b Atomic) {
	if !a.FieldRef().Same(b.FieldRef()) {
		panic(&FieldMismatchError{Left: a.FieldRef(), Right: b.FieldRef()})
	}
}

func unreachable(e Expression) string {
	return fmt.Sprintf("query: unreachable node type %T", e)
}
