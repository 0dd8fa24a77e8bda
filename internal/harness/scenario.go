package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Records is the inline record collection.
	Records []any `yaml:"records,omitempty"`

	// RecordsFile names a record source, relative to the scenario file.
	// Mutually exclusive with Records.
	RecordsFile string `yaml:"records_file,omitempty"`

	// Table selects the table when RecordsFile is a SQLite database.
	Table string `yaml:"table,omitempty"`

	// Expression is the filter under test. May be empty.
	Expression ir.Expression `yaml:"expression"`

	// BatchSizes are the FilterBatch sizes checked against Filter.
	// Defaults to DefaultBatchSizes.
	BatchSizes []int `yaml:"batch_sizes,omitempty"`

	// Expect is the expected outcome.
	Expect Expect `yaml:"expect"`

	// Assertions validate the matching records.
	// Supported types: count, includes, excludes, anomalies
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DefaultBatchSizes are used when a scenario names none.
var DefaultBatchSizes = []int{1, 2, 1000}

// Expect specifies the expected result.
type Expect struct {
	// Matched lists the indexes of the records the expression selects.
	Matched []int `yaml:"matched"`

	// CompileError expects compilation to fail.
	CompileError bool `yaml:"compile_error,omitempty"`
}

// Assertion validates the matching records.
type Assertion struct {
	// Type specifies the assertion type:
	// - "count": exactly Count records match
	// - "includes": some match has all Where values
	// - "excludes": no match has all Where values
	// - "anomalies": exactly Count records evaluated fail-closed
	Type string `yaml:"type"`

	// Where holds expected field values (used by includes and excludes).
	// Keys are dotted paths; subset match.
	Where map[string]any `yaml:"where,omitempty"`

	// Count is the expected number (used by count and anomalies).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCount     = "count"
	AssertIncludes  = "includes"
	AssertExcludes  = "excludes"
	AssertAnomalies = "anomalies"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative records_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.RecordsFile != "" && !filepath.IsAbs(scenario.RecordsFile) {
		scenario.RecordsFile = filepath.Join(filepath.Dir(path), scenario.RecordsFile)
	}
	return scenario, nil
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
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

	if s.Records != nil && s.RecordsFile != "" {
		return fmt.Errorf("records and records_file are mutually exclusive")
	}
	if s.Table != "" && s.RecordsFile == "" {
		return fmt.Errorf("table requires records_file")
	}

	if s.Expect.Matched == nil && !s.Expect.CompileError && len(s.Assertions) == 0 {
		return fmt.Errorf("expect.matched, expect.compile_error or assertions is required")
	}
	if s.Expect.Matched != nil && s.Expect.CompileError {
		return fmt.Errorf("expect.matched and expect.compile_error are mutually exclusive")
	}

	for i, size := range s.BatchSizes {
		if size < 1 {
			return fmt.Errorf("batch_sizes[%d]: must be positive, got %d", i, size)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount, AssertAnomalies:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertIncludes, AssertExcludes:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
