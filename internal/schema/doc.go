// Package schema resolves model fields to stable identities.
//
// Every declared field of a model gets an interned FieldID at build time,
// in declaration order. Two field references denote the same property iff
// their IDs are equal, which makes field identity an O(1) integer
// comparison and a valid map key for grouping constraints.
//
// Models are either assembled in Go with a Builder or loaded from CUE:
//
//	model: Person: {
//	    fields: {
//	        name:  string
//	        age:   int
//	        email: string | null
//	    }
//	    indexes: {age: "ordered", email: "hash"}
//	}
//
// A field whose CUE type admits null is nullable. Float types are rejected.
package schema
