package planner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/docstore/internal/expr"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/query"
	"github.com/roach88/docstore/internal/schema"
)

// Plan is a compiled filter. A cache hit returns a shallow copy carrying the
// caller's Source and Parsed; every other field, the trees and Branches
// included, is shared with the cached plan and must not be mutated.
type Plan struct {
	ID          string
	Fingerprint string
	Model       string
	Param       string
	Source      string

	Parsed     expr.Expr
	Folded     expr.Expr
	Converted  query.Expression
	Normalized query.Expression

	Branches []Branch
}

// Branch is one disjunct of the normal form.
type Branch struct {
	Term       query.Expression
	Candidates []Candidate
	Residual   []query.Expression
}

// Candidate holds the constraints of one branch on a single field.
type Candidate struct {
	Field       schema.Field
	Index       schema.IndexKind
	Constraints []query.Atomic
}

// Indexed reports whether the field declares an index.
func (c Candidate) Indexed() bool {
	return c.Index != schema.IndexNone
}

// Matches reports whether a record satisfies the plan.
func (p *Plan) Matches(record ir.IRObject) (bool, error) {
	return query.Eval(p.Normalized, record)
}

// Boxes returns the non-pushable fragments left in the normal form.
func (p *Plan) Boxes() []query.Box {
	return boxesOf(p.Normalized)
}

// Explain renders the plan deterministically. The plan ID is omitted
// so the output is stable across runs.
func (p *Plan) Explain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model:       %s\n", p.Model)
	fmt.Fprintf(&b, "fingerprint: %s\n", p.Fingerprint)
	fmt.Fprintf(&b, "parsed:      %s\n", expr.String(p.Parsed))
	fmt.Fprintf(&b, "folded:      %s\n", expr.String(p.Folded))
	fmt.Fprintf(&b, "converted:   %s\n", p.Converted)
	fmt.Fprintf(&b, "normalized:  %s\n", p.Normalized)
	fmt.Fprintf(&b, "branches:    %d\n", len(p.Branches))
	for i, br := range p.Branches {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, br.Term)
		for _, c := range br.Candidates {
			parts := make([]string, len(c.Constraints))
			for j, a := range c.Constraints {
				parts[j] = a.String()
			}
			fmt.Fprintf(&b, "      %s (%s): %s\n", c.Field.Name, c.Index, strings.Join(parts, ", "))
		}
		for _, r := range br.Residual {
			fmt.Fprintf(&b, "      residual: %s\n", r)
		}
	}
	return b.String()
}

// branchesOf splits a normalized tree into its DNF branches.
func branchesOf(e query.Expression) []Branch {
	if query.IsFalse(e) {
		return nil
	}
	disjuncts := query.Disjuncts(e)
	out := make([]Branch, 0, len(disjuncts))
	for _, d := range disjuncts {
		out = append(out, branchOf(d))
	}
	return out
}

func branchOf(term query.Expression) Branch {
	br := Branch{Term: term}
	if query.IsTrue(term) {
		return br
	}
	byField := make(map[schema.FieldID]int)
	for _, c := range query.Conjuncts(term) {
		atom, ok := c.(query.Atomic)
		if !ok {
			br.Residual = append(br.Residual, c)
			continue
		}
		f := atom.FieldRef()
		i, seen := byField[f.ID]
		if !seen {
			i = len(br.Candidates)
			byField[f.ID] = i
			br.Candidates = append(br.Candidates, Candidate{Field: f, Index: f.Index})
		}
		br.Candidates[i].Constraints = append(br.Candidates[i].Constraints, atom)
	}
	slices.SortFunc(br.Candidates, func(a, b Candidate) int {
		return int(a.Field.ID) - int(b.Field.ID)
	})
	return br
}

func boxesOf(e query.Expression) []query.Box {
	var out []query.Box
	var walk func(query.Expression)
	walk = func(e query.Expression) {
		switch n := e.(type) {
		case query.And:
			for _, t := range n.Terms {
				walk(t)
			}
		case query.Or:
			for _, t := range n.Terms {
				walk(t)
			}
		case query.Not:
			walk(n.Term)
		case query.Box:
			if !query.IsTrue(n) && !query.IsFalse(n) {
				out = append(out, n)
			}
		}
	}
	walk(e)
	return out
}
