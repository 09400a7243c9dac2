package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/procquery/internal/store"
)

// Scenario defines a query conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Instances are seeded before any query runs.
	Instances []store.DatasetInstance `yaml:"instances"`

	// Queries run in order against the seeded store.
	Queries []QueryStep `yaml:"queries"`
}

// QueryStep is one query and its expected outcome.
type QueryStep struct {
	// Name identifies the step in traces and error messages.
	Name string `yaml:"name"`

	// Query is a CUE query document.
	Query string `yaml:"query"`

	// Expect is the expected outcome.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies the expected outcome of a query.
// Exactly one field must be set.
type ExpectClause struct {
	// IDs are the expected instance ids in result order.
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected result of a count query.
	Count *int64 `yaml:"count,omitempty"`

	// Error is the expected error kind.
	Error string `yaml:"error,omitempty"`
}

// Error kinds recorded in traces and accepted in expect clauses.
const (
	ErrorNonUnique        = "non_unique"
	ErrorInvalidPredicate = "invalid_predicate"
	ErrorInvalidQuery     = "invalid_query"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "query:" vs "queries:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for i, inst := range s.Instances {
		if inst.ProcessDefinitionID == "" {
			return fmt.Errorf("instances[%d]: process_definition_id is required", i)
		}
	}

	seen := make(map[string]bool)
	for i, step := range s.Queries {
		if step.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if seen[step.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, step.Name)
		}
		seen[step.Name] = true

		if step.Query == "" {
			return fmt.Errorf("queries[%d]: query is required", i)
		}
		if err := validateExpect(i, &step.Expect); err != nil {
			return err
		}
	}

	return nil
}

// validateExpect checks that exactly one outcome is specified.
func validateExpect(index int, e *ExpectClause) error {
	set := 0
	if e.IDs != nil {
		set++
	}
	if e.Count != nil {
		set++
	}
	if e.Error != "" {
		set++
		switch e.Error {
		case ErrorNonUnique, ErrorInvalidPredicate, ErrorInvalidQuery:
		default:
			return fmt.Errorf("queries[%d].expect: unknown error kind %q", index, e.Error)
		}
	}
	if set != 1 {
		return fmt.Errorf("queries[%d].expect: exactly one of ids, count or error is required", index)
	}
	return nil
}
