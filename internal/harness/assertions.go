package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Matched  []int  // Matching indexes for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Matched: %v\n", e.Matched)

	return buf.String()
}

// assertCount checks the number of matching records.
func assertCount(result *Result, assertion Assertion) error {
	if len(result.Matched) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d matching records", assertion.Count),
		Actual:   fmt.Sprintf("%d matching records", len(result.Matched)),
		Matched:  result.Matched,
	}
}

// assertAnomalies checks the number of fail-closed records.
func assertAnomalies(result *Result, assertion Assertion) error {
	if result.Anomalies == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertAnomalies,
		Expected: fmt.Sprintf("%d anomalies", assertion.Count),
		Actual:   fmt.Sprintf("%d anomalies", result.Anomalies),
		Matched:  result.Matched,
	}
}

// assertIncludes checks that some matching record has every Where value.
func assertIncludes(result *Result, assertion Assertion) error {
	for _, rec := range result.Records {
		if matchWhere(rec, assertion.Where) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertIncludes,
		Expected: fmt.Sprintf("a match where %s", formatWhereClause(assertion.Where)),
		Actual:   "no such record",
		Matched:  result.Matched,
	}
}

// assertExcludes checks that no matching record has every Where value.
func assertExcludes(result *Result, assertion Assertion) error {
	for i, rec := range result.Records {
		if matchWhere(rec, assertion.Where) {
			return &AssertionError{
				Type:     AssertExcludes,
				Expected: fmt.Sprintf("no match where %s", formatWhereClause(assertion.Where)),
				Actual:   fmt.Sprintf("record %d matches", result.Matched[i]),
				Matched:  result.Matched,
			}
		}
	}
	return nil
}

// matchWhere checks that rec holds every expected value (subset match).
// Keys are dotted paths resolved like condition keys; values compare with
// strict equality after YAML number normalization.
func matchWhere(rec any, where map[string]any) bool {
	for path, expected := range where {
		actual := ir.ValueOf(compiler.Resolve(rec, compiler.SplitPath(path)))
		if !ir.StrictEqual(actual, ir.ValueOf(expected)) {
			return false
		}
	}
	return true
}

// formatWhereClause creates a human-readable description of Where values.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCount:
			err = assertCount(result, assertion)
		case AssertAnomalies:
			err = assertAnomalies(result, assertion)
		case AssertIncludes:
			err = assertIncludes(result, assertion)
		case AssertExcludes:
			err = assertExcludes(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
