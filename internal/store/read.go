package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

const planColumns = `seq, fingerprint, id, model, source, normalized, branches, boxes`

// LookupPlan returns the plan recorded under fingerprint, or ErrNotFound.
func (s *Store) LookupPlan(ctx context.Context, fingerprint string) (PlanRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE fingerprint = ?
	`, fingerprint)

	rec, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PlanRecord{}, fmt.Errorf("lookup plan %s: %w", fingerprint, ErrNotFound)
	}
	if err != nil {
		return PlanRecord{}, fmt.Errorf("lookup plan %s: %w", fingerprint, err)
	}
	return rec, nil
}

// ListPlans returns the plans recorded for a model, oldest first.
// An empty model lists every plan.
// Results are ordered deterministically: ORDER BY seq ASC, fingerprint ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no plans exist.
func (s *Store) ListPlans(ctx context.Context, model string) ([]PlanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE ? = '' OR model = ?
		ORDER BY seq ASC, fingerprint COLLATE BINARY ASC
	`, model, model)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []PlanRecord{}
	for rows.Next() {
		rec, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// LookupModel returns the stored field declarations of a model, or
// ErrNotFound.
func (s *Store) LookupModel(ctx context.Context, model string) ([]FieldRecord, error) {
	var fields string
	err := s.db.QueryRowContext(ctx, `
		SELECT fields FROM plan_models WHERE model = ?
	`, model).Scan(&fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup model %s: %w", model, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup model %s: %w", model, err)
	}
	return unmarshalFields(fields)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (PlanRecord, error) {
	var (
		rec   PlanRecord
		boxes string
	)
	if err := row.Scan(
		&rec.Seq,
		&rec.Fingerprint,
		&rec.ID,
		&rec.Model,
		&rec.Source,
		&rec.Normalized,
		&rec.Branches,
		&boxes,
	); err != nil {
		return PlanRecord{}, err
	}
	parsed, err := unmarshalBoxes(boxes)
	if err != nil {
		return PlanRecord{}, err
	}
	rec.Boxes = parsed
	return rec, nil
}
