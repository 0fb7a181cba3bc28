package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/index"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/query"
	"github.com/roach88/docstore/internal/schema"
)

// DefaultCacheSize is the number of plans kept when Options.CacheSize is 0.
const DefaultCacheSize = 128

// Options configures a Planner.
type Options struct {
	// CacheSize bounds the plan cache. Zero means DefaultCacheSize.
	CacheSize int

	// Logger receives compilation events. Nil means slog.Default().
	Logger *slog.Logger

	// Funcs are the functions filters may call.
	Funcs map[string]expr.Func

	// Param names the record parameter. Empty means expr.DefaultParam.
	Param string
}

// Planner compiles filters against one model.
type Planner struct {
	model  *schema.Model
	conv   *query.Converter
	cache  *lru.Cache[string, *Plan]
	logger *slog.Logger
	funcs  map[string]expr.Func
	param  string
}

// New creates a planner for m with classifiers derived from its indexes.
func New(m *schema.Model, opts Options) (*Planner, error) {
	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Plan](size)
	if err != nil {
		return nil, fmt.Errorf("plan cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conv := query.NewConverter(m)
	conv.Classifiers = index.Classifiers(m)
	return &Planner{
		model:  m,
		conv:   conv,
		cache:  cache,
		logger: logger,
		funcs:  opts.Funcs,
		param:  expr.Options{Param: opts.Param}.ParamName(),
	}, nil
}

// Model returns the planner's model.
func (p *Planner) Model() *schema.Model { return p.model }

// CacheLen returns the number of cached plans.
func (p *Planner) CacheLen() int { return p.cache.Len() }

// Compile compiles filter source without captured variables.
func (p *Planner) Compile(ctx context.Context, source string) (*Plan, error) {
	return p.CompileWithVars(ctx, source, nil)
}

// CompileWithVars compiles filter source with captured variables bound.
func (p *Planner) CompileWithVars(ctx context.Context, source string, vars map[string]ir.IRValue) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := expr.Parse(source, expr.Options{Param: p.param, Vars: vars, Funcs: p.funcs})
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	p.logger.Debug("filter parsed", "model", p.model.Name(), "expr", expr.String(parsed))
	return p.compile(source, parsed)
}

// CompileExpr compiles an already built expression over the planner's
// record parameter.
func (p *Planner) CompileExpr(ctx context.Context, e expr.Expr) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.compile(expr.String(e), e)
}

func (p *Planner) compile(source string, parsed expr.Expr) (*Plan, error) {
	folded, err := expr.PartialEval(parsed, p.param)
	if err != nil {
		return nil, fmt.Errorf("partial evaluation: %w", err)
	}
	p.logger.Debug("filter folded", "model", p.model.Name(), "expr", expr.String(folded))

	fp, err := ir.PlanFingerprint(p.model.Name(), cacheKey(p.param, folded))
	if err != nil {
		return nil, err
	}
	if cached, ok := p.cache.Get(fp); ok {
		p.logger.Info("plan cached", "model", p.model.Name(), "fingerprint", short(fp), "plan", cached.ID)
		plan := *cached
		plan.Source = source
		plan.Parsed = parsed
		return &plan, nil
	}

	converted := p.conv.Convert(folded, p.param)
	p.logger.Debug("filter converted", "model", p.model.Name(), "tree", converted.String())

	normalized := query.Normalize(converted)
	p.logger.Debug("filter normalized", "model", p.model.Name(), "tree", normalized.String())

	plan := &Plan{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Fingerprint: fp,
		Model:       p.model.Name(),
		Param:       p.param,
		Source:      source,
		Parsed:      parsed,
		Folded:      folded,
		Converted:   converted,
		Normalized:  normalized,
		Branches:    branchesOf(normalized),
	}
	for _, b := range plan.Boxes() {
		p.logger.Warn("predicate not indexable", "model", p.model.Name(), "expr", expr.String(b.Body))
	}
	p.cache.Add(fp, plan)

	p.logger.Info("plan compiled",
		"model", p.model.Name(),
		"fingerprint", short(fp),
		"plan", plan.ID,
		"branches", len(plan.Branches),
	)
	return plan, nil
}

// cacheKey renders the record parameter and the folded tree. Captured
// variables are already folded into constants at this point.
func cacheKey(param string, folded expr.Expr) string {
	var b strings.Builder
	b.WriteString(param)
	b.WriteString(": ")
	b.WriteString(expr.String(folded))
	return b.String()
}

// short returns the fingerprint prefix used in log lines.
func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
