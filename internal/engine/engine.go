package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/observability"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// Runner executes filter runs with logging, metrics and tracing.
//
// A Runner compiles through its own compiler, so the accessor cache is
// reused across runs. Records are processed in batches; the context is
// checked between batches.
//
// Thread-safety: Run and Compile are safe for concurrent use.
type Runner struct {
	logger    *slog.Logger
	batchSize int
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	cache     *compiler.Cache
	ids       compiler.IDGenerator
	compiler  *compiler.Compiler
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBatchSize sets how many records are evaluated between context checks.
//
// Default: 1000 (DefaultBatchSize). Values below 1 use the default.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 1 {
			r.batchSize = n
		}
	}
}

// WithMetrics sets the metrics recorder. Defaults to observability.NoopMetrics.
func WithMetrics(m observability.MetricsRecorder) RunnerOption {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithSpans sets the span manager. Defaults to observability.NoopSpanManager.
func WithSpans(s observability.SpanManager) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.spans = s
		}
	}
}

// WithCache shares a compile cache with other runners or compilers.
func WithCache(c *compiler.Cache) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithIDGenerator sets the program ID source.
func WithIDGenerator(g compiler.IDGenerator) RunnerOption {
	return func(r *Runner) {
		r.ids = g
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:    slog.Default(),
		batchSize: DefaultBatchSize,
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.compiler = compiler.New(
		compiler.WithCache(r.cache),
		compiler.WithIDGenerator(r.ids),
	)
	return r
}

// Result summarizes one run.
type Result struct {
	ProgramID string        `json:"program_id"`
	Matched   []int         `json:"matched"`   // Indexes of matching records, ascending
	Scanned   int           `json:"scanned"`   // Records evaluated
	Anomalies int           `json:"anomalies"` // Records forced to false by a malformed program
	Duration  time.Duration `json:"duration_ns"`
}

// Select returns the matching records of in, which must be the slice the
// result was computed from.
func Select[T any](res *Result, in []T) []T {
	out := make([]T, 0, len(res.Matched))
	for _, i := range res.Matched {
		out = append(out, in[i])
	}
	return out
}

// Compile compiles expr and records compile metrics.
func (r *Runner) Compile(ctx context.Context, expr ir.Expression) (*queryir.Program, error) {
	prog, err := r.compiler.Compile(expr)
	if err != nil {
		r.metrics.RecordCompile(ctx, 0, err)
		r.logger.Error("failed to compile filter expression", "error", err)
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	r.metrics.RecordCompile(ctx, prog.Conditions(), nil)
	r.logger.Debug("expression compiled",
		"program_id", prog.ID,
		"expression_hash", prog.ExpressionHash,
		"instructions", prog.Len(),
	)
	return prog, nil
}

// Run compiles expr and evaluates it against records.
func (r *Runner) Run(ctx context.Context, records []any, expr ir.Expression) (*Result, error) {
	prog, err := r.Compile(ctx, expr)
	if err != nil {
		return nil, err
	}
	return r.RunProgram(ctx, records, prog)
}

// RunProgram evaluates a compiled program against records.
//
// Per-record anomalies are logged at debug level and counted; they never
// fail the run. The run fails only when ctx is done, in which case no
// partial result is returned.
func (r *Runner) RunProgram(ctx context.Context, records []any, prog *queryir.Program) (*Result, error) {
	start := time.Now()
	res := &Result{ProgramID: prog.ID, Matched: []int{}}

	ctx, span := r.spans.StartFilterSpan(ctx, prog.ID, len(records))
	err := r.evaluateAll(ctx, records, prog, res)
	res.Duration = time.Since(start)

	r.metrics.RecordFilterRun(ctx, res.Scanned, len(res.Matched), res.Duration, err)
	r.spans.EndSpanWithError(span, err)
	if err != nil {
		r.logger.Info("filter run cancelled", "program_id", prog.ID, "scanned", res.Scanned, "error", err)
		return nil, err
	}

	r.logger.Info("filter run complete",
		"program_id", prog.ID,
		"scanned", res.Scanned,
		"matched", len(res.Matched),
		"anomalies", res.Anomalies,
		"duration", res.Duration,
	)
	return res, nil
}

// evaluateAll fills res batch by batch, stopping when ctx is done.
func (r *Runner) evaluateAll(ctx context.Context, records []any, prog *queryir.Program, res *Result) error {
	r.logger.Debug("filter run starting",
		"program_id", prog.ID,
		"records", len(records),
		"batch_size", r.batchSize,
	)

	st := NewStacks(prog.Len())
	for batchStart := 0; batchStart < len(records); batchStart += r.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		batchEnd := min(batchStart+r.batchSize, len(records))
		r.spans.AddSpanEvent(ctx, "batch",
			attribute.Int("batch.start", batchStart),
			attribute.Int("batch.end", batchEnd),
		)

		for i := batchStart; i < batchEnd; i++ {
			ok, evalErr := run(records[i], prog, st)
			res.Scanned++
			if evalErr != nil {
				res.Anomalies++
				r.metrics.RecordAnomaly(ctx, string(evalErr.Code))
				r.logger.Debug("record evaluated fail-closed",
					"program_id", prog.ID,
					"index", i,
					"error", evalErr,
				)
				continue
			}
			if ok {
				res.Matched = append(res.Matched, i)
			}
		}
	}
	return nil
}
