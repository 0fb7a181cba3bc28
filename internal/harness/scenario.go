package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a filter compilation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path to the CUE model file.
	// Relative paths are resolved against the scenario file location.
	Model string `yaml:"model"`

	// ModelName selects the model within the file.
	ModelName string `yaml:"model_name"`

	// Vars are captured variables visible to the filter.
	Vars map[string]interface{} `yaml:"vars,omitempty"`

	// Filter is the predicate source.
	Filter string `yaml:"filter"`

	// Assertions validate the compiled plan.
	Assertions []Assertion `yaml:"assertions"`

	// Records are evaluated against the plan with the expected outcome.
	Records []RecordCase `yaml:"records,omitempty"`
}

// RecordCase pairs a record with whether the filter must match it.
type RecordCase struct {
	Record map[string]interface{} `yaml:"record"`
	Match  bool                   `yaml:"match"`
}

// Assertion validates one aspect of the plan.
type Assertion struct {
	// Type specifies the assertion type:
	// - "normalized": rendered normal form equals Value
	// - "branches": the plan has exactly Count branches
	// - "indexed": every branch has an indexed candidate on Field
	// - "boxed": the normal form holds exactly Count boxes
	// - "error": compilation fails with a message containing Value
	Type string `yaml:"type"`

	Value string `yaml:"value,omitempty"`
	Field string `yaml:"field,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertNormalized = "normalized"
	AssertBranches   = "branches"
	AssertIndexed    = "indexed"
	AssertBoxed      = "boxed"
	AssertError      = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The model path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.ModelName == "" {
		return fmt.Errorf("model_name is required")
	}
	if s.Filter == "" {
		return fmt.Errorf("filter is required")
	}
	if len(s.Assertions) == 0 && len(s.Records) == 0 {
		return fmt.Errorf("at least one assertion or record is required")
	}

	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.Model)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	for i, rc := range s.Records {
		if rc.Record == nil {
			return fmt.Errorf("records[%d]: record is required (use {} for an empty record)", i)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNormalized, AssertError:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertIndexed:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for indexed", index)
		}
	case AssertBranches, AssertBoxed:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
