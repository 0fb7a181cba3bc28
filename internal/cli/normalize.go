package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/docstore/internal/planner"
)

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Model       string `json:"model"`
	Fingerprint string `json:"fingerprint"`
	Normalized  string `json:"normalized"`
	Branches    int    `json:"branches"`
	Boxes       int    `json:"boxes"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <model.cue> <model-name> <filter>",
		Short: "Print the normal form of a filter",
		Long: `Compile a filter against a model and print its disjunctive normal form.

Exit codes:
  0 - Filter compiled
  1 - Filter does not parse or constant evaluation failed
  2 - Command error (model file not found, etc.)

Examples:
  docstore normalize person.cue Person 'r.age >= 18 && r.email != null'
  docstore normalize person.cue Person 'r.age >= min' --var min=21 --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)
			plan, err := compileFilter(opts, formatter, args[0], args[1], args[2], cmd)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return formatter.SuccessWithPlan(plan.ID, normalizeResult(plan))
			}
			return formatter.Success(plan.Normalized.String() + "\n")
		},
	}
	addCompileFlags(cmd, opts)
	return cmd
}

func normalizeResult(plan *planner.Plan) NormalizeResult {
	return NormalizeResult{
		Model:       plan.Model,
		Fingerprint: plan.Fingerprint,
		Normalized:  plan.Normalized.String(),
		Branches:    len(plan.Branches),
		Boxes:       len(plan.Boxes()),
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// compileFilter loads the model and compiles the filter, reporting
// failures through the formatter.
func compileFilter(opts *CompileOptions, f *OutputFormatter, modelPath, modelName, source string, cmd *cobra.Command) (*planner.Plan, error) {
	m, err := loadModel(modelPath, modelName)
	if err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			_ = f.Error(ErrCodeNotFound, exitErr.Message, nil)
			return nil, exitErr
		}
		return nil, f.Fail(ExitCommandError, "load model", err)
	}
	f.VerboseLog("Loaded model %s (%d fields) from %s", m.Name(), len(m.Fields()), modelPath)

	vars, err := parseVars(opts.Vars)
	if err != nil {
		_ = f.Error(ErrCodeInvalidVar, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "parse vars", err)
	}

	p, err := newPlanner(m, opts, f.GetErrWriter())
	if err != nil {
		return nil, f.Fail(ExitCommandError, "create planner", err)
	}
	plan, err := p.CompileWithVars(cmd.Context(), source, vars)
	if err != nil {
		return nil, f.Fail(ExitFailure, "compile filter", err)
	}
	return plan, nil
}
