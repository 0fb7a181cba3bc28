package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/docstore/internal/planner"
)

// AssertionError is returned when an assertion fails.
// It includes the normalized tree to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Tree     string // Normalized tree, empty when compilation failed
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Tree != "" {
		fmt.Fprintf(&buf, "  Tree: %s\n", e.Tree)
	}
	return buf.String()
}

// checkAssertion dispatches on the assertion type. Every type except
// "error" fails when compilation failed.
func checkAssertion(plan *planner.Plan, compileErr error, a Assertion) error {
	if a.Type == AssertError {
		return assertError(compileErr, a)
	}
	if compileErr != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: "a compiled plan",
			Actual:   compileErr.Error(),
		}
	}

	switch a.Type {
	case AssertNormalized:
		return assertNormalized(plan, a)
	case AssertBranches:
		return assertBranches(plan, a)
	case AssertIndexed:
		return assertIndexed(plan, a)
	case AssertBoxed:
		return assertBoxed(plan, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertError(compileErr error, a Assertion) error {
	if compileErr == nil {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("compile error containing %q", a.Value),
			Actual:   "compiled successfully",
		}
	}
	if !strings.Contains(compileErr.Error(), a.Value) {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("compile error containing %q", a.Value),
			Actual:   compileErr.Error(),
		}
	}
	return nil
}

func assertNormalized(plan *planner.Plan, a Assertion) error {
	got := plan.Normalized.String()
	if got != a.Value {
		return &AssertionError{
			Type:     AssertNormalized,
			Expected: a.Value,
			Actual:   got,
			Tree:     got,
		}
	}
	return nil
}

func assertBranches(plan *planner.Plan, a Assertion) error {
	if len(plan.Branches) != a.Count {
		return &AssertionError{
			Type:     AssertBranches,
			Expected: fmt.Sprintf("%d branches", a.Count),
			Actual:   fmt.Sprintf("%d branches", len(plan.Branches)),
			Tree:     plan.Normalized.String(),
		}
	}
	return nil
}

// assertIndexed checks that every branch constrains the field through its
// index.
func assertIndexed(plan *planner.Plan, a Assertion) error {
	for i, br := range plan.Branches {
		found := false
		for _, c := range br.Candidates {
			if c.Field.Name == a.Field && c.Indexed() {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertIndexed,
				Expected: fmt.Sprintf("indexed constraint on %s in every branch", a.Field),
				Actual:   fmt.Sprintf("branch %d has none: %s", i+1, br.Term),
				Tree:     plan.Normalized.String(),
			}
		}
	}
	return nil
}

func assertBoxed(plan *planner.Plan, a Assertion) error {
	n := len(plan.Boxes())
	if n != a.Count {
		return &AssertionError{
			Type:     AssertBoxed,
			Expected: fmt.Sprintf("%d boxes", a.Count),
			Actual:   fmt.Sprintf("%d boxes", n),
			Tree:     plan.Normalized.String(),
		}
	}
	return nil
}
