package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/engine"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/store"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a fixed program ID source.
type Harness struct {
	logger *slog.Logger
	ids    compiler.IDGenerator
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used for runs. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    testutil.NewFixedIDGenerator(""),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a test scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load records (inline or from records_file)
// 2. Compile the expression through an engine.Runner
// 3. Run the program and collect matches
// 4. Cross-check Filter and FilterBatch against the Runner
// 5. Compare with the expectation and evaluate assertions
//
// The returned error covers infrastructure failures only; scenario failures
// are reported through Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	records, err := h.loadRecords(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	runner := engine.NewRunner(
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(h.ids),
	)
	result := NewResult()

	prog, err := runner.Compile(ctx, scenario.Expression)
	if err != nil {
		if !compiler.IsCompileError(err) {
			return nil, err
		}
		result.CompileError = err.Error()
		if !scenario.Expect.CompileError {
			result.AddError(fmt.Sprintf("unexpected compile error: %v", err))
		}
		h.checkFailClosed(records, scenario, result)
		return result, nil
	}
	if scenario.Expect.CompileError {
		result.AddError("expected a compile error, expression compiled")
	}

	res, err := runner.RunProgram(ctx, records, prog)
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario %s: %w", scenario.Name, err)
	}

	result.ProgramID = prog.ID
	if !prog.Empty() {
		result.Program = strings.Split(prog.String(), "\n")
	}
	result.Matched = res.Matched
	result.Records = engine.Select(res, records)
	result.Anomalies = res.Anomalies

	h.checkEntryPoints(records, scenario, result)

	if scenario.Expect.Matched != nil && !slices.Equal(scenario.Expect.Matched, result.Matched) {
		result.AddError(fmt.Sprintf("matched: expected %v, got %v", scenario.Expect.Matched, result.Matched))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"matched", len(result.Matched),
	)
	return result, nil
}

// loadRecords returns the scenario's records. Every record must be an
// object so that matches can be identified by position.
func (h *Harness) loadRecords(ctx context.Context, scenario *Scenario) ([]any, error) {
	var records []any
	if scenario.RecordsFile != "" {
		loaded, err := store.Load(ctx, store.Source{Path: scenario.RecordsFile, Table: scenario.Table})
		if err != nil {
			return nil, err
		}
		records = loaded
	} else {
		records, _ = store.Normalize(scenario.Records).([]any)
		if records == nil {
			records = []any{}
		}
	}

	for i, rec := range records {
		if _, ok := rec.(map[string]any); !ok {
			return nil, fmt.Errorf("records[%d]: must be an object, got %T", i, rec)
		}
	}
	return records, nil
}

// checkEntryPoints verifies Filter and FilterBatch select the same records
// as the Runner.
func (h *Harness) checkEntryPoints(records []any, scenario *Scenario, result *Result) {
	got := testutil.Indexes(records, engine.Filter(records, scenario.Expression))
	if !slices.Equal(got, result.Matched) {
		result.AddError(fmt.Sprintf("Filter disagrees with Runner: %v vs %v", got, result.Matched))
	}

	sizes := scenario.BatchSizes
	if len(sizes) == 0 {
		sizes = DefaultBatchSizes
	}
	for _, size := range sizes {
		got := testutil.Indexes(records, engine.FilterBatch(records, scenario.Expression, size))
		if !slices.Equal(got, result.Matched) {
			result.AddError(fmt.Sprintf("FilterBatch(%d) disagrees with Runner: %v vs %v", size, got, result.Matched))
		}
	}
}

// checkFailClosed verifies Filter returns nothing for an expression that
// does not compile.
func (h *Harness) checkFailClosed(records []any, scenario *Scenario, result *Result) {
	if n := len(engine.Filter(records, scenario.Expression)); n != 0 {
		result.AddError(fmt.Sprintf("Filter returned %d records for an uncompilable expression", n))
	}
}
