// Package query rewrites raw predicates into canonical trees of per-field
// constraints.
//
// The pipeline is:
//
//	expr.PartialEval -> Converter.Convert -> Normalize
//
// Convert maps comparisons between a record field and a constant onto the
// atomic nodes Range, Equality and IsNull, and wraps anything it cannot
// classify in a Box. Normalize then drives the tree to a fixed point in
// disjunctive normal form: negations pushed to the leaves, nested And/Or
// flattened, And distributed over Or, and same-field atomics merged through
// their TryIntersect and TryUnion operations.
//
// Null semantics:
//   - Range and positive non-null Equality never match a null field
//   - an inverted non-null Equality (x != 5) matches a null field
//   - Equality with a null Value is a null test, like IsNull
//   - an unbounded Range on both sides matches everything, including null
//
// Trees are immutable. Every rewrite allocates new nodes, so a normalized
// tree can be cached and shared between goroutines.
package query
