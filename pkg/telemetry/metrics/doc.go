// Package metrics provides Prometheus metrics collection for Conduit.
//
// # Metrics Categories
//
//   - Run metrics: pipeline runs by provider, model, mode and status, run
//     duration and streamed fragment counts
//   - Provider metrics: HTTP requests, latency to response headers, and
//     errors by type
//   - Cache metrics: hits, misses, failed operations, size and evictions
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun("openai", "gpt-4", "stream", "success", time.Second)
//
//	// At exit, for the node exporter textfile collector
//	if err := collector.WriteTextfile(); err != nil {
//	    slog.Warn("metrics export failed", "error", err)
//	}
//
// Every Record method is a no-op on a nil *Collector or when metrics are
// disabled, so callers never need to check.
//
// # Cardinality
//
// Model names come from configuration and requests. After 1000 distinct
// provider/model pairs new models are recorded as "other".
package metrics
