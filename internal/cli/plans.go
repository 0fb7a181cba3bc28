package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docstore/internal/store"
)

// PlansOptions holds flags for the plans command.
type PlansOptions struct {
	*RootOptions
	Model string
}

// PlanSummary is one catalog row in JSON output.
type PlanSummary struct {
	Seq         int64    `json:"seq"`
	Fingerprint string   `json:"fingerprint"`
	ID          string   `json:"id"`
	Model       string   `json:"model"`
	Source      string   `json:"source"`
	Normalized  string   `json:"normalized"`
	Branches    int      `json:"branches"`
	Boxes       []string `json:"boxes"`
}

// NewPlansCommand creates the plans command.
func NewPlansCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlansOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plans <catalog.db>",
		Short: "List plans recorded in a catalog",
		Long: `List the plans recorded by explain --catalog, oldest first.

Examples:
  docstore plans plans.db
  docstore plans plans.db --model Person --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlans(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Model, "model", "", "only list plans for this model")
	return cmd
}

func runPlans(opts *PlansOptions, catalog string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Don't let Open create an empty catalog for a mistyped path.
	if _, err := os.Stat(catalog); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("catalog not found: %s", catalog), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("catalog not found: %s", catalog))
	}

	s, err := store.Open(catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, "open catalog", err)
	}
	defer s.Close()

	plans, err := s.ListPlans(cmd.Context(), opts.Model)
	if err != nil {
		return formatter.Fail(ExitCommandError, "list plans", err)
	}

	if opts.Format == "json" {
		out := make([]PlanSummary, len(plans))
		for i, p := range plans {
			out[i] = PlanSummary(p)
		}
		return formatter.Success(out)
	}

	if len(plans) == 0 {
		return formatter.Success("No plans recorded.\n")
	}
	var b strings.Builder
	for _, p := range plans {
		fmt.Fprintf(&b, "%d  %s  %s  %s\n", p.Seq, p.Fingerprint[:12], p.Model, p.Normalized)
		fmt.Fprintf(&b, "    source: %s\n", p.Source)
		for _, box := range p.Boxes {
			fmt.Fprintf(&b, "    residual: %s\n", box)
		}
	}
	return formatter.Success(b.String())
}
