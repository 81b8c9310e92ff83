// Package telemetry groups Conduit's observability packages.
//
//   - logging: slog setup with credential redaction and request context fields
//   - metrics: Prometheus collectors for runs, provider calls and the cache
//   - tracing: OpenTelemetry spans for runs, exported over OTLP gRPC
//
// All three are configured from the telemetry section of the configuration
// file and are optional: a nil metrics collector or tracer records nothing.
package telemetry
