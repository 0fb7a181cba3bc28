// Package index provides the per-field classifiers that tell the converter
// which constraint shapes an index understands, and small in-memory
// reference indexes that answer those constraints.
//
// Two index kinds exist:
//   - hash: equality and inequality only, including against null
//   - ordered: equality, inequality and ranges, backed by a B-tree
//
// Lookup returns ok == false for a constraint the index cannot answer;
// the caller then evaluates the constraint per record instead.
package index
