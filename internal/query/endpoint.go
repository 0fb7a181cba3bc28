package query

import (
	"cmp"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

// endpoint is a position on the extended number line of a field's values.
//
// Unbounded sides sit at inf = -1 or +1. A bounded endpoint is (value, ext):
// an inclusive bound is the value itself (ext 0), while an exclusive lower
// bound sits just above it (ext +1) and an exclusive upper bound just below
// it (ext -1). With this encoding a range is non-empty exactly when its
// lower endpoint does not exceed its upper endpoint.
type endpoint struct {
	value ir.IRValue
	inf   int
	ext   int
}

var (
	negInf = endpoint{inf: -1}
	posInf = endpoint{inf: 1}
)

func at(v ir.IRValue) endpoint {
	return endpoint{value: v}
}

func (e endpoint) bounded() bool {
	return e.inf == 0
}

func (e endpoint) compare(o endpoint) int {
	if e.inf != 0 || o.inf != 0 {
		return cmp.Compare(e.inf, o.inf)
	}
	if c := ir.MustCompare(e.value, o.value); c != 0 {
		return c
	}
	return cmp.Compare(e.ext, o.ext)
}

func lowerOf(r Range) endpoint {
	if ir.IsNull(r.From) {
		return negInf
	}
	if r.FromInclusive {
		return at(r.From)
	}
	return endpoint{value: r.From, ext: 1}
}

func upperOf(r Range) endpoint {
	if ir.IsNull(r.To) {
		return posInf
	}
	if r.ToInclusive {
		return at(r.To)
	}
	return endpoint{value: r.To, ext: -1}
}

// between builds the range [lo, hi] from two endpoints.
func between(f schema.Field, lo, hi endpoint) Range {
	r := Range{Field: f}
	if lo.bounded() {
		r.From = lo.value
		r.FromInclusive = lo.ext == 0
	}
	if hi.bounded() {
		r.To = hi.value
		r.ToInclusive = hi.ext == 0
	}
	return r
}

// contains reports whether v lies inside r.
func (r Range) contains(v ir.IRValue) bool {
	p := at(v)
	return lowerOf(r).compare(p) <= 0 && p.compare(upperOf(r)) <= 0
}

// touches reports whether an upper endpoint and a lower endpoint that do not
// overlap still leave no gap between them, as in (1, 5) and [5, 9).
func touches(hi, lo endpoint) bool {
	return hi.bounded() && lo.bounded() &&
		ir.Equal(hi.value, lo.value) && lo.ext-hi.ext == 1
}

func minEndpoint(a, b endpoint) endpoint {
	if a.compare(b) <= 0 {
		return a
	}
	return b
}

func maxEndpoint(a, b endpoint) endpoint {
	if a.compare(b) >= 0 {
		return a
	}
	return b
}
