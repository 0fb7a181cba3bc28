package store

import (
	"context"
	"fmt"

	"github.com/roach88/docstore/internal/schema"
)

// PlanRecord is a compiled plan as stored in the catalog.
type PlanRecord struct {
	Seq         int64
	Fingerprint string
	ID          string
	Model       string
	Source      string
	Normalized  string
	Branches    int
	Boxes       []string
}

// SavePlan inserts a plan record.
// Uses ON CONFLICT(fingerprint) DO NOTHING for idempotency. The returned
// bool reports whether a new row was written.
func (s *Store) SavePlan(ctx context.Context, rec PlanRecord) (bool, error) {
	if rec.Fingerprint == "" {
		return false, fmt.Errorf("save plan: empty fingerprint")
	}
	boxes, err := marshalBoxes(rec.Boxes)
	if err != nil {
		return false, fmt.Errorf("save plan: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO plans
		(fingerprint, id, model, source, normalized, branches, boxes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		rec.Fingerprint,
		rec.ID,
		rec.Model,
		rec.Source,
		rec.Normalized,
		rec.Branches,
		boxes,
	)
	if err != nil {
		return false, fmt.Errorf("save plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save plan: %w", err)
	}
	return n == 1, nil
}

// SaveModel records a model's field declarations, replacing any earlier
// declaration under the same name.
func (s *Store) SaveModel(ctx context.Context, m *schema.Model) error {
	fields, err := marshalFields(m)
	if err != nil {
		return fmt.Errorf("save model %s: %w", m.Name(), err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_models (model, fields)
		VALUES (?, ?)
		ON CONFLICT(model) DO UPDATE SET fields = excluded.fields
	`, m.Name(), fields)
	if err != nil {
		return fmt.Errorf("save model %s: %w", m.Name(), err)
	}
	return nil
}
