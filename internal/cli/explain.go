package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/planner"
	"github.com/roach88/docstore/internal/store"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	CompileOptions
	Catalog string // SQLite catalog to record the plan in
}

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	NormalizeResult
	Parsed    string          `json:"parsed"`
	Folded    string          `json:"folded"`
	Converted string          `json:"converted"`
	Plan      []BranchSummary `json:"plan"`
	Recorded  bool            `json:"recorded,omitempty"`
}

// BranchSummary is one DNF branch in JSON output.
type BranchSummary struct {
	Term       string             `json:"term"`
	Candidates []CandidateSummary `json:"candidates"`
	Residual   []string           `json:"residual"`
}

// CandidateSummary lists the constraints of one field within a branch.
type CandidateSummary struct {
	Field       string   `json:"field"`
	Index       string   `json:"index"`
	Constraints []string `json:"constraints"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{CompileOptions: CompileOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "explain <model.cue> <model-name> <filter>",
		Short: "Show every compilation stage of a filter",
		Long: `Compile a filter and print each stage: the parsed and folded
expressions, the converted tree, the normal form, and the per-branch
index candidates.

With --catalog the plan is recorded in a SQLite catalog, keyed by
fingerprint. Recording the same plan twice is a no-op.

Examples:
  docstore explain person.cue Person '(r.tier == "gold" || r.tier == "silver") && r.age > 21'
  docstore explain person.cue Person 'r.age >= min' --var min=18 --catalog plans.db`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args, cmd)
		},
	}
	addCompileFlags(cmd, &opts.CompileOptions)
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "record the plan in this SQLite catalog")
	return cmd
}

func runExplain(opts *ExplainOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	plan, err := compileFilter(&opts.CompileOptions, formatter, args[0], args[1], args[2], cmd)
	if err != nil {
		return err
	}

	recorded := false
	if opts.Catalog != "" {
		recorded, err = recordPlan(cmd, opts.Catalog, args[0], args[1], plan)
		if err != nil {
			_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
			return WrapExitError(ExitCommandError, "record plan", err)
		}
		formatter.VerboseLog("Catalog %s: recorded=%t", opts.Catalog, recorded)
	}

	if opts.Format == "json" {
		return formatter.SuccessWithPlan(plan.ID, explainResult(plan, recorded))
	}
	return formatter.Success(plan.Explain())
}

// recordPlan stores the plan and its model declaration in the catalog.
func recordPlan(cmd *cobra.Command, catalog, modelPath, modelName string, plan *planner.Plan) (bool, error) {
	s, err := store.Open(catalog)
	if err != nil {
		return false, err
	}
	defer s.Close()

	m, err := loadModel(modelPath, modelName)
	if err != nil {
		return false, err
	}
	if err := s.SaveModel(cmd.Context(), m); err != nil {
		return false, err
	}
	return s.SavePlan(cmd.Context(), planRecord(plan))
}

func planRecord(plan *planner.Plan) store.PlanRecord {
	boxes := plan.Boxes()
	rendered := make([]string, len(boxes))
	for i, b := range boxes {
		rendered[i] = b.String()
	}
	return store.PlanRecord{
		Fingerprint: plan.Fingerprint,
		ID:          plan.ID,
		Model:       plan.Model,
		Source:      plan.Source,
		Normalized:  plan.Normalized.String(),
		Branches:    len(plan.Branches),
		Boxes:       rendered,
	}
}

func explainResult(plan *planner.Plan, recorded bool) ExplainResult {
	out := ExplainResult{
		NormalizeResult: normalizeResult(plan),
		Parsed:          expr.String(plan.Parsed),
		Folded:          expr.String(plan.Folded),
		Converted:       plan.Converted.String(),
		Plan:            make([]BranchSummary, 0, len(plan.Branches)),
		Recorded:        recorded,
	}
	for _, br := range plan.Branches {
		bs := BranchSummary{
			Term:       br.Term.String(),
			Candidates: make([]CandidateSummary, 0, len(br.Candidates)),
			Residual:   make([]string, 0, len(br.Residual)),
		}
		for _, c := range br.Candidates {
			cs := CandidateSummary{Field: c.Field.Name, Index: c.Index.String()}
			for _, a := range c.Constraints {
				cs.Constraints = append(cs.Constraints, a.String())
			}
			bs.Candidates = append(bs.Candidates, cs)
		}
		for _, r := range br.Residual {
			bs.Residual = append(bs.Residual, r.String())
		}
		out.Plan = append(out.Plan, bs)
	}
	return out
}
