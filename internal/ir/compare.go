package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// CompareError reports an attempt to order values that have no common order.
type CompareError struct {
	Left  IRValue
	Right IRValue
}

func (e *CompareError) Error() string {
	return fmt.Sprintf("cannot compare %s with %s", KindName(e.Left), KindName(e.Right))
}

// KindName returns a short type name for diagnostics ("int", "string", ...).
func KindName(v IRValue) string {
	switch v.(type) {
	case nil, IRNull:
		return "null"
	case IRString:
		return "string"
	case IRInt:
		return "int"
	case IRBool:
		return "bool"
	case IRArray:
		return "array"
	case IRObject:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// IsScalar reports whether v is one of the ordered scalar kinds.
func IsScalar(v IRValue) bool {
	switch v.(type) {
	case IRString, IRInt, IRBool:
		return true
	default:
		return false
	}
}

// SameKind reports whether a and b are scalars of the same kind.
func SameKind(a, b IRValue) bool {
	switch a.(type) {
	case IRString:
		_, ok := b.(IRString)
		return ok
	case IRInt:
		_, ok := b.(IRInt)
		return ok
	case IRBool:
		_, ok := b.(IRBool)
		return ok
	default:
		return false
	}
}

// Compare orders two scalars of the same kind.
// Ints compare numerically, strings by bytes, and false sorts before true.
// Mixed kinds, nulls, arrays and objects yield a *CompareError.
func Compare(a, b IRValue) (int, error) {
	switch x := a.(type) {
	case IRInt:
		if y, ok := b.(IRInt); ok {
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			}
			return 0, nil
		}
	case IRString:
		if y, ok := b.(IRString); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case IRBool:
		if y, ok := b.(IRBool); ok {
			switch {
			case x == y:
				return 0, nil
			case !bool(x):
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, &CompareError{Left: a, Right: b}
}

// MustCompare is like Compare but panics on error.
// Use only where both operands are known to share a scalar kind.
func MustCompare(a, b IRValue) int {
	c, err := Compare(a, b)
	if err != nil {
		panic(err)
	}
	return c
}

// Equal reports deep equality of two values. nil and IRNull are equal.
func Equal(a, b IRValue) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch x := a.(type) {
	case IRString, IRInt, IRBool:
		return a == b
	case IRArray:
		y, ok := b.(IRArray)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case IRObject:
		y, ok := b.(IRObject)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Format renders a value for diagnostics and node rendering.
// Strings are Go-quoted so the output stays unambiguous.
func Format(v IRValue) string {
	switch val := v.(type) {
	case nil, IRNull:
		return "null"
	case IRString:
		return strconv.Quote(string(val))
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRBool:
		return strconv.FormatBool(bool(val))
	case IRArray:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Format(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case IRObject:
		keys := val.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + Format(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
