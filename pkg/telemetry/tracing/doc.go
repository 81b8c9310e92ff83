// Package tracing provides OpenTelemetry tracing for pipeline runs.
//
// Each run gets one span ("conduit.run") carrying the provider, model,
// stream flag and cache outcome. Outgoing provider requests carry the W3C
// traceparent header so a tracing-aware gateway can join the trace.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    otlp:
//	      insecure: true
//
// Spans are exported over OTLP gRPC. When tracing is disabled New returns a
// noop tracer; a nil *Tracer behaves the same way.
package tracing
