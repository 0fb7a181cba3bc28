// Package harness runs filter scenarios against the planner.
//
// A scenario is a YAML file naming a CUE model, a filter, and what the
// compiled plan must look like:
//
//	name: adults-with-email
//	description: range and not-null on indexed fields stay pushable
//	model: models/person.cue
//	model_name: Person
//	vars:
//	  min: 18
//	filter: r.age >= min && r.email != null
//	assertions:
//	  - type: normalized
//	    value: and(age >= 18, email != null)
//	  - type: indexed
//	    field: age
//	records:
//	  - record: {name: ann, age: 30, email: ann@example.com}
//	    match: true
//
// Run compiles the filter, evaluates every assertion and record, and checks
// that the plan's indexed candidates never drop a matching record: for each
// record that matches, at least one branch must have every indexed
// constraint answered by the reference indexes with that record included.
//
// RunWithGolden additionally compares the plan explanation with
// testdata/golden/<name>.golden.
package harness
