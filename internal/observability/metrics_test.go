package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumTotal adds up all data points of an int64 counter.
func sumTotal(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type, got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordFilterRun(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordFilterRun(ctx, 100, 7, 3*time.Millisecond, nil)
	m.RecordFilterRun(ctx, 50, 0, time.Millisecond, errors.New("cancelled"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(150), sumTotal(t, findMetric(rm, "jsonfilter.records.scanned")))
	assert.Equal(t, int64(7), sumTotal(t, findMetric(rm, "jsonfilter.records.matched")))
	assert.Equal(t, int64(2), sumTotal(t, findMetric(rm, "jsonfilter.filter.runs")))

	latency := findMetric(rm, "jsonfilter.filter.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	assert.Len(t, hist.DataPoints, 2, "one data point per success value")
}

func TestRecordCompile(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCompile(ctx, 3, nil)
	m.RecordCompile(ctx, 0, errors.New("bad literal"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumTotal(t, findMetric(rm, "jsonfilter.compile.count")))

	conds := findMetric(rm, "jsonfilter.compile.conditions")
	require.NotNil(t, conds)
	hist, ok := conds.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count, "failed compiles are not sized")
}

func TestRecordAnomaly(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAnomaly(ctx, "UNMATCHED_CLOSE")
	m.RecordAnomaly(ctx, "UNMATCHED_CLOSE")
	m.RecordAnomaly(ctx, "UNSUPPORTED_OPERATOR")

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "jsonfilter.eval.anomalies")
	assert.Equal(t, int64(3), sumTotal(t, metric))

	sum := metric.Data.(metricdata.Sum[int64])
	byCode := map[string]int64{}
	for _, dp := range sum.DataPoints {
		code, _ := dp.Attributes.Value("code")
		byCode[code.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"UNMATCHED_CLOSE": 2, "UNSUPPORTED_OPERATOR": 1}, byCode)
}
