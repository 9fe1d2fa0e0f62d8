// Package middleware provides tracing and metrics for the filter host.
//
// This package includes:
//   - OpenTelemetry HTTP tracing middleware and widget event spans
//   - Prometheus HTTP metrics keyed by chi route pattern
//   - Widget counters recorded by the synchronizer and the event socket
//
// # OpenTelemetry Middleware
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("filters"),
//	))
//
// The tracer uses the global OpenTelemetry tracer provider. Without a
// configured provider spans are no-ops.
//
// # Prometheus Metrics
//
//	r.Use(middleware.Prometheus(
//	    middleware.WithNamespace("filters"),
//	))
//	r.Handle("/metrics", promhttp.Handler())
//
// Metrics are created once per process; the Record* functions are no-ops
// until Prometheus has been called.
package middleware
