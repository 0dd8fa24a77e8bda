package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records filter metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompile records one expression compilation.
	RecordCompile(ctx context.Context, conditions int, err error)

	// RecordFilterRun records a completed run over a record collection.
	RecordFilterRun(ctx context.Context, scanned, matched int, duration time.Duration, err error)

	// RecordAnomaly records one record that evaluated fail-closed.
	RecordAnomaly(ctx context.Context, code string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	compiles       metric.Int64Counter
	compileConds   metric.Int64Histogram
	runs           metric.Int64Counter
	runLatency     metric.Float64Histogram
	recordsScanned metric.Int64Counter
	recordsMatched metric.Int64Counter
	anomalies      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("jsonfilter")

	compiles, err := meter.Int64Counter("jsonfilter.compile.count",
		metric.WithDescription("Number of expression compilations"),
	)
	if err != nil {
		return nil, err
	}

	compileConds, err := meter.Int64Histogram("jsonfilter.compile.conditions",
		metric.WithDescription("Conditions per compiled expression"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("jsonfilter.filter.runs",
		metric.WithDescription("Number of filter runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("jsonfilter.filter.latency_ms",
		metric.WithDescription("Filter run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	recordsScanned, err := meter.Int64Counter("jsonfilter.records.scanned",
		metric.WithDescription("Records evaluated"),
	)
	if err != nil {
		return nil, err
	}

	recordsMatched, err := meter.Int64Counter("jsonfilter.records.matched",
		metric.WithDescription("Records that satisfied the expression"),
	)
	if err != nil {
		return nil, err
	}

	anomalies, err := meter.Int64Counter("jsonfilter.eval.anomalies",
		metric.WithDescription("Records forced to false by a malformed program"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		compiles:       compiles,
		compileConds:   compileConds,
		runs:           runs,
		runLatency:     runLatency,
		recordsScanned: recordsScanned,
		recordsMatched: recordsMatched,
		anomalies:      anomalies,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, conditions int, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.compiles.Add(ctx, 1, attrs)
	if err == nil {
		m.compileConds.Record(ctx, int64(conditions))
	}
}

// RecordFilterRun records a filter run.
func (m *otelMetrics) RecordFilterRun(ctx context.Context, scanned, matched int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.runs.Add(ctx, 1, attrs)
	m.runLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.recordsScanned.Add(ctx, int64(scanned))
	m.recordsMatched.Add(ctx, int64(matched))
}

// RecordAnomaly records a fail-closed record.
func (m *otelMetrics) RecordAnomaly(ctx context.Context, code string) {
	m.anomalies.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
