// Package observability provides OpenTelemetry metrics and tracing for
// filter runs.
//
// Both concerns sit behind small interfaces with no-op implementations so the
// engine pays nothing when they are disabled:
//
//	recorder := observability.NewMetricsRecorder() // or NoopMetrics{}
//	spans := observability.NewSpanManager()        // or NoopSpanManager{}
//
// The OTel implementations use the global meter and tracer providers.
// Configure them before constructing recorders.
package observability
