package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/schema"
)

// marshalBoxes converts box renderings to canonical JSON TEXT for storage.
func marshalBoxes(boxes []string) (string, error) {
	arr := make(ir.IRArray, len(boxes))
	for i, b := range boxes {
		arr[i] = ir.IRString(b)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal boxes: %w", err)
	}
	return string(data), nil
}

// unmarshalBoxes parses the boxes column. Returns an empty slice, not nil.
func unmarshalBoxes(data string) ([]string, error) {
	out := []string{}
	if data == "" || data == "[]" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal boxes: %w", err)
	}
	return out, nil
}

// marshalFields encodes a model's field declarations as canonical JSON,
// one object per field in declaration order.
func marshalFields(m *schema.Model) (string, error) {
	fields := m.Fields()
	arr := make(ir.IRArray, len(fields))
	for i, f := range fields {
		arr[i] = ir.IRObject{
			"name":     ir.IRString(f.Name),
			"kind":     ir.IRString(f.Kind.String()),
			"nullable": ir.IRBool(f.Nullable),
			"index":    ir.IRString(f.Index.String()),
		}
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// FieldRecord is a stored field declaration.
type FieldRecord struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Nullable bool   `json:"nullable"`
	Index    string `json:"index"`
}

func unmarshalFields(data string) ([]FieldRecord, error) {
	var out []FieldRecord
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, nil
}
