package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// Snapshot captures the observable outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string   `json:"scenario_name"`
	ProgramID    string   `json:"program_id,omitempty"`
	Program      []string `json:"program"`
	Matched      []int    `json:"matched"`
	Records      []any    `json:"records"`
	Anomalies    int      `json:"anomalies"`
	CompileError string   `json:"compile_error,omitempty"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		ProgramID:    result.ProgramID,
		Program:      result.Program,
		Matched:      result.Matched,
		Records:      result.Records,
		Anomalies:    result.Anomalies,
		CompileError: result.CompileError,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	program := make([]any, len(s.Program))
	for i, line := range s.Program {
		program[i] = line
	}
	matched := make([]any, len(s.Matched))
	for i, idx := range s.Matched {
		matched[i] = idx
	}
	records := s.Records
	if records == nil {
		records = []any{}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"program":       program,
		"matched":       matched,
		"records":       records,
		"anomalies":     s.Anomalies,
	}
	if s.ProgramID != "" {
		result["program_id"] = s.ProgramID
	}
	if s.CompileError != "" {
		result["compile_error"] = s.CompileError
	}
	return result
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewSnapshot(scenarioName, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
