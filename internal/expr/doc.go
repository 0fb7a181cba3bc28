// Package expr defines the raw predicate trees handed to the planner.
//
// A predicate is a boolean expression over a single record parameter:
//
//	r.age >= 18 && !(r.name == threshold)
//
// Trees are built by Parse (CUE expression syntax) or directly by callers.
// Nodes are plain values and are never mutated after construction.
//
// Evaluation follows database null semantics for comparisons:
//   - == and != treat null as an ordinary value (null == null is true)
//   - <, <=, > and >= are false when either operand is null
//   - arithmetic on null is an *EvalError
//
// PartialEval folds every subtree that does not reference the record
// parameter into a Const so that downstream pattern matching only sees
// field accesses and constants.
package expr
