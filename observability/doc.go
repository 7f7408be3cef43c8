// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the delivery engine. Both are optional; a nil *Metrics or
// *Tracer disables the corresponding instrumentation.
package observability
