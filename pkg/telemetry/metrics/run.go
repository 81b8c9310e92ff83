package metrics

import (
	"time"

	"mercator-hq/conduit/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks pipeline runs.
//
// Metrics:
//   - conduit_pipeline_runs_total: runs by provider, model, mode and status
//   - conduit_pipeline_run_duration_seconds: run duration histogram
//   - conduit_pipeline_stream_fragments_total: fragments delivered to callers
type RunMetrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	fragments   *prometheus.CounterVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"provider", "model", "mode", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"provider", "mode"},
		),

		fragments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_fragments_total",
				Help:      "Total number of streamed fragments delivered",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.fragments,
	)

	return rm
}

// RecordRun records a completed run.
func (rm *RunMetrics) RecordRun(provider, model, mode, status string, duration time.Duration) {
	rm.runsTotal.WithLabelValues(provider, model, mode, status).Inc()
	rm.runDuration.WithLabelValues(provider, mode).Observe(duration.Seconds())
}

// RecordFragments adds n delivered fragments.
func (rm *RunMetrics) RecordFragments(provider string, n int) {
	rm.fragments.WithLabelValues(provider).Add(float64(n))
}
