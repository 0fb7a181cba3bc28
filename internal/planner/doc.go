// Package planner compiles filter source into normalized query plans.
//
// A compilation runs four stages:
//
//	parse      CUE expression syntax into an expr.Expr
//	fold       partial evaluation of every subtree that does not read the record
//	convert    classification into query nodes, using the model's index classifiers
//	normalize  rewriting to disjunctive normal form
//
// The resulting Plan splits the normal form into branches. Each branch lists
// its atomic constraints grouped by field, which is what an index selector
// consumes, and the residual terms that must be evaluated per record.
//
// Plans are cached in an LRU keyed by plan fingerprint. A Planner is safe
// for concurrent use.
package planner
