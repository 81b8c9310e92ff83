package metrics

import (
	"sync"
	"time"

	"mercator-hq/conduit/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric Conduit records. A nil *Collector
// and a collector built from a disabled configuration are both valid and
// record nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics      *RunMetrics
	providerMetrics *ProviderMetrics
	cacheMetrics    *CacheMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.runMetrics = NewRunMetrics(cfg, registry)
	c.providerMetrics = NewProviderMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// model folds unseen models into "other" once the cardinality limit is hit.
func (c *Collector) model(provider, model string) string {
	if !c.cardinalityLimiter.Allow(provider + ":" + model) {
		return "other"
	}
	return model
}

// RecordRun records a finished pipeline run.
//
// Parameters:
//   - provider: provider tag (e.g., "openai", "local")
//   - model: model identifier sent on the wire
//   - mode: "batch" or "stream"
//   - status: "success", "cache_hit", "error" or "abandoned"
//   - duration: time from Run until the result was complete
func (c *Collector) RecordRun(provider, model, mode, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.runMetrics.RecordRun(provider, c.model(provider, model), mode, status, duration)
}

// RecordFragments adds the number of streamed fragments delivered to the caller.
func (c *Collector) RecordFragments(provider string, n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.runMetrics.RecordFragments(provider, n)
}

// RecordProviderRequest records one HTTP request sent to a provider and the
// time until its response headers arrived.
func (c *Collector) RecordProviderRequest(provider, model string, latency time.Duration) {
	if !c.enabled() {
		return
	}
	model = c.model(provider, model)
	c.providerMetrics.RecordRequest(provider, model)
	c.providerMetrics.RecordLatency(provider, model, latency.Seconds())
}

// RecordProviderError records an error attributed to a provider.
//
// Parameters:
//   - provider: provider tag
//   - errorType: "rate_limit", "auth", "client_error", "server_error",
//     "network", "truncated" or "decode"
func (c *Collector) RecordProviderError(provider, errorType string) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordError(provider, errorType)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheError records a failed cache read or write. Cache failures
// never fail a run, so this counter is the only place they surface.
func (c *Collector) RecordCacheError(cacheName, op string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordError(cacheName, op)
}

// RecordCacheEviction records entries removed by LRU eviction or pruning.
func (c *Collector) RecordCacheEviction(cacheName string, n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.cacheMetrics.RecordEvictions(cacheName, n)
}

// UpdateCacheSize updates the current size of a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
