package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/planner"
	"github.com/roach88/docstore/internal/schema"
)

// CompileOptions holds flags shared by the commands that compile a filter.
type CompileOptions struct {
	*RootOptions
	Vars      []string // name=value pairs, values in filter literal syntax
	CacheSize int
}

// newLogger returns the planner logger: debug when verbose, warnings only
// otherwise. Logs always go to w (stderr) so JSON output stays clean.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadModel loads the named model, mapping a missing file to
// ExitCommandError.
func loadModel(path, name string) (*schema.Model, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("model file not found: %s", path))
	}
	return schema.LoadModel(path, name)
}

// newPlanner builds a planner for a model with the CLI logger.
func newPlanner(m *schema.Model, opts *CompileOptions, errW io.Writer) (*planner.Planner, error) {
	return planner.New(m, planner.Options{
		CacheSize: opts.CacheSize,
		Logger:    newLogger(errW, opts.Verbose),
	})
}

// parseVars parses --var flags. The value is a filter literal (18,
// "bob", true, null, or a constant expression such as 60 * 60); anything
// that does not parse is taken as a bare string.
func parseVars(flags []string) (map[string]ir.IRValue, error) {
	vars := make(map[string]ir.IRValue, len(flags))
	for _, f := range flags {
		name, raw, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", f)
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", f, err)
		}
		vars[name] = v
	}
	return vars, nil
}

func parseValue(raw string) (ir.IRValue, error) {
	e, err := expr.Parse(raw, expr.Options{})
	if err != nil {
		if strings.Contains(err.Error(), "float literal") {
			return nil, err
		}
		return ir.IRString(raw), nil
	}
	if expr.References(e, expr.DefaultParam) {
		return nil, fmt.Errorf("value must not reference the record")
	}
	return expr.Eval(e, nil)
}
