package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result for golden comparison: the plan explanation
// followed by the per-record answers.
func Snapshot(scenario *Scenario, result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario:    %s\n", scenario.Name)
	fmt.Fprintf(&b, "filter:      %s\n", scenario.Filter)
	if result.Plan == nil {
		fmt.Fprintf(&b, "error:       %s\n", result.CompileError)
		return b.String()
	}
	b.WriteString(result.Plan.Explain())
	if len(result.Matches) > 0 {
		b.WriteString("records:\n")
		for i, m := range result.Matches {
			fmt.Fprintf(&b, "  [%d] match=%t\n", i+1, m)
		}
	}
	return b.String()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails or the scenario does not pass.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(Snapshot(scenario, result)))

	if !result.Pass {
		return fmt.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}
	return nil
}
