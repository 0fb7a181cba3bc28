package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/index"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/planner"
	"github.com/roach88/docstore/internal/schema"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion and record check held.
	Pass bool `json:"pass"`

	// Plan is the compiled plan, nil when compilation failed.
	Plan *planner.Plan `json:"-"`

	// CompileError holds the compilation error message, if any.
	CompileError string `json:"compile_error,omitempty"`

	// Matches holds the plan's answer for each scenario record.
	Matches []bool `json:"matches"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Matches: []bool{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Harness runs scenarios against one model.
type Harness struct {
	model   *schema.Model
	planner *planner.Planner
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the model and build a planner for it
// 2. Compile the filter with the scenario vars
// 3. Evaluate the assertions against the plan
// 4. Evaluate the records and check index coverage
//
// A returned error means the scenario could not be set up; assertion and
// record failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	m, err := schema.LoadModel(scenario.Model, scenario.ModelName)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	p, err := planner.New(m, planner.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	h := &Harness{model: m, planner: p, logger: logger}

	vars, err := convertVars(scenario.Vars)
	if err != nil {
		return nil, err
	}
	records, err := convertRecords(scenario.Records)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	plan, compileErr := p.CompileWithVars(context.Background(), scenario.Filter, vars)
	if compileErr != nil {
		result.CompileError = compileErr.Error()
	}
	result.Plan = plan

	for _, a := range scenario.Assertions {
		if err := checkAssertion(plan, compileErr, a); err != nil {
			result.AddError(err.Error())
		}
	}
	if compileErr != nil {
		if !expectsError(scenario.Assertions) {
			result.AddError(fmt.Sprintf("compile: %v", compileErr))
		}
		return result, nil
	}

	if err := h.checkRecords(plan, scenario.Records, records, result); err != nil {
		return nil, err
	}
	return result, nil
}

func expectsError(assertions []Assertion) bool {
	return slices.ContainsFunc(assertions, func(a Assertion) bool { return a.Type == AssertError })
}

// checkRecords evaluates each record three ways: against the normalized plan,
// against the folded source expression, and through the reference indexes.
func (h *Harness) checkRecords(plan *planner.Plan, cases []RecordCase, records []ir.IRObject, result *Result) error {
	set, err := index.NewSet(h.model)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if err := set.Insert(index.DocID(i+1), rec); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
	}

	for i, rec := range records {
		got, err := plan.Matches(rec)
		if err != nil {
			result.AddError(fmt.Sprintf("records[%d]: evaluate plan: %v", i, err))
			result.Matches = append(result.Matches, false)
			continue
		}
		result.Matches = append(result.Matches, got)
		h.logger.Debug("record evaluated", "record", i, "match", got)

		if got != cases[i].Match {
			result.AddError(fmt.Sprintf("records[%d]: expected match=%t, got %t", i, cases[i].Match, got))
		}

		direct, err := expr.EvalBool(plan.Folded, expr.Bind(plan.Param, rec))
		if err == nil && direct != got {
			result.AddError(fmt.Sprintf("records[%d]: plan says %t but source says %t", i, got, direct))
		}

		if got && !covered(plan, set, index.DocID(i+1)) {
			result.AddError(fmt.Sprintf("records[%d]: matching record not returned by any branch's indexes", i))
		}
	}
	return nil
}

// covered reports whether some branch keeps id after intersecting the
// lookups of its indexed constraints.
func covered(plan *planner.Plan, set *index.Set, id index.DocID) bool {
	for _, br := range plan.Branches {
		if branchKeeps(br, set, id) {
			return true
		}
	}
	return false
}

func branchKeeps(br planner.Branch, set *index.Set, id index.DocID) bool {
	for _, c := range br.Candidates {
		if !c.Indexed() {
			continue
		}
		for _, atom := range c.Constraints {
			ids, ok := set.Lookup(atom)
			if !ok {
				continue
			}
			if _, found := slices.BinarySearch(ids, id); !found {
				return false
			}
		}
	}
	return true
}

// convertVars converts YAML-decoded vars to IR values.
func convertVars(vars map[string]interface{}) (map[string]ir.IRValue, error) {
	out := make(map[string]ir.IRValue, len(vars))
	for name, v := range vars {
		iv, err := ir.FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("vars[%q]: %w", name, err)
		}
		out[name] = iv
	}
	return out, nil
}

// convertRecords converts YAML-decoded records to IR objects.
func convertRecords(cases []RecordCase) ([]ir.IRObject, error) {
	out := make([]ir.IRObject, len(cases))
	for i, rc := range cases {
		rec, err := ir.RecordFromGo(rc.Record)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}
