package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/ir"
)

const personModel = `model: Person: {
	fields: {
		name:  string
		age:   int | null
		email: string | null
		tier:  string
	}
	indexes: {
		age:   "ordered"
		email: "hash"
		tier:  "hash"
	}
}
`

const (
	scenariosDir = "../harness/testdata/scenarios"
	goldenDir    = "../harness/testdata/golden"
)

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "person.cue")
	require.NoError(t, os.WriteFile(path, []byte(personModel), 0644))
	return path
}

// execute runs the root command and returns stdout, stderr and the error.
func execute(args ...string) (string, string, error) {
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	resp := CLIResponse{Data: data}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestNormalize_Text(t *testing.T) {
	model := writeModel(t)

	out, _, err := execute("normalize", model, "Person", "r.age >= 18 && r.email != null")
	require.NoError(t, err)
	assert.Equal(t, "and(age >= 18, email != null)\n", out)
}

func TestNormalize_Vars(t *testing.T) {
	model := writeModel(t)

	out, _, err := execute("normalize", model, "Person", "r.age >= min && r.tier == t",
		"--var", "min=60 - 39", "--var", "t=gold")
	require.NoError(t, err)
	assert.Equal(t, "and(age >= 21, tier == \"gold\")\n", out)
}

func TestNormalize_JSON(t *testing.T) {
	model := writeModel(t)

	out, _, err := execute("--format", "json", "normalize", model, "Person",
		`r.tier == "gold" || r.tier == "silver"`)
	require.NoError(t, err)

	var res NormalizeResult
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.PlanID)
	assert.Equal(t, "Person", res.Model)
	assert.Len(t, res.Fingerprint, 64)
	assert.Equal(t, 2, res.Branches)
	assert.Equal(t, 0, res.Boxes)
}

func TestNormalize_FingerprintIgnoresSpelling(t *testing.T) {
	model := writeModel(t)

	fingerprint := func(filter string, vars ...string) string {
		args := append([]string{"--format", "json", "normalize", model, "Person", filter}, vars...)
		out, _, err := execute(args...)
		require.NoError(t, err)
		var res NormalizeResult
		decodeResponse(t, out, &res)
		return res.Fingerprint
	}

	assert.Equal(t, fingerprint("r.age >= 18"), fingerprint("r.age >= min", "--var", "min=18"))
	assert.NotEqual(t, fingerprint("r.age >= 18"), fingerprint("r.age >= 19"))
}

func TestNormalize_Errors(t *testing.T) {
	model := writeModel(t)

	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"parse error", []string{"normalize", model, "Person", "r.age >="}, ExitFailure, ErrCodeParse},
		{"eval error", []string{"normalize", model, "Person", "r.age > 1 / 0"}, ExitFailure, ErrCodeEval},
		{"unknown model", []string{"normalize", model, "Account", "true"}, ExitCommandError, ErrCodeSchema},
		{"missing model file", []string{"normalize", "missing.cue", "Person", "true"}, ExitCommandError, ErrCodeNotFound},
		{"bad var", []string{"normalize", model, "Person", "true", "--var", "nope"}, ExitCommandError, ErrCodeInvalidVar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestNormalize_VerboseLogsToStderr(t *testing.T) {
	model := writeModel(t)

	out, errOut, err := execute("-v", "--format", "json", "normalize", model, "Person", "r.age > 3")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Loaded model Person")
	assert.Contains(t, errOut, "plan compiled")
	decodeResponse(t, out, nil)
}

func TestExplain_Text(t *testing.T) {
	model := writeModel(t)

	out, _, err := execute("explain", model, "Person", `r.age > 21 && r.name == "ann"`)
	require.NoError(t, err)
	assert.Contains(t, out, "model:       Person\n")
	assert.Contains(t, out, "normalized:  and(")
	assert.Contains(t, out, "age (ordered): age > 21")
	assert.Contains(t, out, "name (none): name == \"ann\"")
}

func TestExplain_JSON(t *testing.T) {
	model := writeModel(t)

	out, _, err := execute("--format", "json", "explain", model, "Person",
		`(r.tier == "gold" || r.tier == "silver") && r.age > 21`)
	require.NoError(t, err)

	var res ExplainResult
	decodeResponse(t, out, &res)
	assert.Equal(t, "Person", res.Model)
	assert.Equal(t, 2, res.Branches)
	require.Len(t, res.Plan, 2)
	for _, br := range res.Plan {
		require.Len(t, br.Candidates, 2)
		assert.Equal(t, "age", br.Candidates[0].Field)
		assert.Equal(t, "ordered", br.Candidates[0].Index)
		assert.Equal(t, "tier", br.Candidates[1].Field)
		assert.Equal(t, "hash", br.Candidates[1].Index)
		assert.Empty(t, br.Residual)
	}
	assert.False(t, res.Recorded)
}

func TestExplain_CatalogAndPlans(t *testing.T) {
	model := writeModel(t)
	catalog := filepath.Join(t.TempDir(), "plans.db")

	explain := func(filter string) ExplainResult {
		out, _, err := execute("--format", "json", "explain", model, "Person", filter, "--catalog", catalog)
		require.NoError(t, err)
		var res ExplainResult
		decodeResponse(t, out, &res)
		return res
	}

	first := explain("r.age >= 18")
	assert.True(t, first.Recorded)
	assert.False(t, explain("r.age >= 18").Recorded, "same plan is recorded once")
	assert.True(t, explain(`r.name + "!" == "ann!" || r.age < 3`).Recorded)

	out, _, err := execute("--format", "json", "plans", catalog)
	require.NoError(t, err)
	var plans []PlanSummary
	decodeResponse(t, out, &plans)
	require.Len(t, plans, 2)
	assert.Equal(t, first.Fingerprint, plans[0].Fingerprint)
	assert.Equal(t, "age >= 18", plans[0].Normalized)
	assert.Empty(t, plans[0].Boxes)
	assert.Equal(t, []string{`box(r.name + "!" == "ann!")`}, plans[1].Boxes)
	assert.Less(t, plans[0].Seq, plans[1].Seq)

	out, _, err = execute("plans", catalog, "--model", "Account")
	require.NoError(t, err)
	assert.Equal(t, "No plans recorded.\n", out)

	out, _, err = execute("plans", catalog, "--model", "Person")
	require.NoError(t, err)
	assert.Contains(t, out, "age >= 18")
	assert.Contains(t, out, "residual: box(r.name + \"!\" == \"ann!\")")
}

func TestPlans_MissingCatalog(t *testing.T) {
	_, _, err := execute("plans", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_AllScenariosPass(t *testing.T) {
	out, _, err := execute("test", scenariosDir, "--golden", goldenDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ adults_with_email")
	assert.Contains(t, out, "✓ division_by_zero")
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_FilterJSON(t *testing.T) {
	out, _, err := execute("--format", "json", "test", scenariosDir, "--golden", goldenDir, "--filter", "tier_*")
	require.NoError(t, err)

	var res TestResult
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Scenarios, 1)
	assert.Equal(t, "tier_or_age", res.Scenarios[0].Name)
	assert.True(t, res.Scenarios[0].Pass)
}

func TestTest_GoldenUpdateAndMismatch(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t)
	scenario := `name: teens
model: ` + model + `
model_name: Person
filter: r.age >= 13 && r.age <= 19
assertions:
  - type: normalized
    value: age in [13, 19]
records:
  - record: {name: ann, age: 15, email: null, tier: free}
    match: true
`
	path := filepath.Join(dir, "teens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0644))

	out, _, err := execute("test", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ teens (golden updated)")

	golden := filepath.Join(dir, "golden", "teens.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "normalized:  age in [13, 19]")

	_, _, err = execute("test", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0644))
	out, _, err = execute("test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "plan does not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t)
	scenario := `name: wrong
model: ` + model + `
model_name: Person
filter: r.age > 3
assertions:
  - type: branches
    count: 2
`
	path := filepath.Join(dir, "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0644))

	out, _, err := execute("--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var res TestResult
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, res.Failed)
}

func TestTest_MissingPath(t *testing.T) {
	_, _, err := execute("test", filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"n=18", "s=\"bob\"", "raw=gold", "b=true", "z=null", "e=2 * 3"})
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(18), vars["n"])
	assert.Equal(t, ir.IRString("bob"), vars["s"])
	assert.Equal(t, ir.IRString("gold"), vars["raw"])
	assert.Equal(t, ir.IRBool(true), vars["b"])
	assert.True(t, ir.IsNull(vars["z"]))
	assert.Equal(t, ir.IRInt(6), vars["e"])

	_, err = parseVars([]string{"=1"})
	assert.Error(t, err)
	_, err = parseVars([]string{"x=r.age"})
	assert.Error(t, err)
}
