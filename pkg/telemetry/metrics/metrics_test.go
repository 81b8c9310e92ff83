package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/conduit/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "metrics",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace || cfg.Subsystem != config.DefaultMetricsSubsystem {
		t.Errorf("defaults not applied: namespace %q subsystem %q", cfg.Namespace, cfg.Subsystem)
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRun("openai", "gpt-4", "batch", "success", 1200*time.Millisecond)
	collector.RecordRun("openai", "gpt-4", "batch", "success", 300*time.Millisecond)
	collector.RecordRun("local", "llama3", "stream", "cache_hit", time.Millisecond)

	runs := collector.runMetrics.runsTotal
	if got := testutil.ToFloat64(runs.WithLabelValues("openai", "gpt-4", "batch", "success")); got != 2 {
		t.Errorf("openai runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(runs.WithLabelValues("local", "llama3", "stream", "cache_hit")); got != 1 {
		t.Errorf("local cache hits = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.runMetrics.runDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_RecordFragments(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordFragments("anthropic", 3)
	collector.RecordFragments("anthropic", 0)
	collector.RecordFragments("anthropic", 2)

	if got := testutil.ToFloat64(collector.runMetrics.fragments.WithLabelValues("anthropic")); got != 5 {
		t.Errorf("fragments = %v, want 5", got)
	}
}

func TestCollector_ProviderMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordProviderRequest("openai", "gpt-4", 250*time.Millisecond)
	collector.RecordProviderError("openai", "rate_limit")
	collector.RecordProviderError("openai", "rate_limit")

	pm := collector.providerMetrics
	if got := testutil.ToFloat64(pm.requests.WithLabelValues("openai", "gpt-4")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pm.errors.WithLabelValues("openai", "rate_limit")); got != 2 {
		t.Errorf("rate_limit errors = %v, want 2", got)
	}
}

func TestCollector_CacheMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCacheHit("memory")
	collector.RecordCacheMiss("memory")
	collector.RecordCacheMiss("memory")
	collector.RecordCacheError("sqlite", "set")
	collector.RecordCacheEviction("memory", 4)
	collector.UpdateCacheSize("memory", 42)

	cm := collector.cacheMetrics
	if got := testutil.ToFloat64(cm.hitsTotal.WithLabelValues("memory")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.missesTotal.WithLabelValues("memory")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cm.errorsTotal.WithLabelValues("sqlite", "set")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.evictionsTotal.WithLabelValues("memory")); got != 4 {
		t.Errorf("evictions = %v, want 4", got)
	}
	if got := testutil.ToFloat64(cm.entries.WithLabelValues("memory")); got != 42 {
		t.Errorf("entries = %v, want 42", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRun("openai", "gpt-4", "batch", "success", time.Second)
	collector.RecordCacheHit("memory")

	if got := testutil.CollectAndCount(collector.runMetrics.runsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d run series", got)
	}
	if err := collector.WriteTextfile(); err != nil {
		t.Errorf("WriteTextfile() on disabled collector error = %v", err)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *Collector

	collector.RecordRun("openai", "gpt-4", "batch", "success", time.Second)
	collector.RecordFragments("openai", 1)
	collector.RecordProviderRequest("openai", "gpt-4", time.Second)
	collector.RecordProviderError("openai", "network")
	collector.RecordCacheHit("memory")
	collector.RecordCacheMiss("memory")
	collector.RecordCacheError("memory", "get")
	collector.RecordCacheEviction("memory", 1)
	collector.UpdateCacheSize("memory", 1)
}

func TestCollector_CardinalityLimit(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.cardinalityLimiter = NewCardinalityLimiter(1)

	collector.RecordRun("local", "llama3", "batch", "success", time.Second)
	collector.RecordRun("local", "mistral", "batch", "success", time.Second)

	runs := collector.runMetrics.runsTotal
	if got := testutil.ToFloat64(runs.WithLabelValues("local", "other", "batch", "success")); got != 1 {
		t.Errorf("other = %v, want 1", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("Allow() rejected label sets under the limit")
	}
	if !cl.Allow("a") {
		t.Error("Allow() rejected an existing label set")
	}
	if cl.Allow("c") {
		t.Error("Allow() accepted a label set over the limit")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	cfg := testConfig()
	cfg.Textfile = filepath.Join(t.TempDir(), "conduit.prom")
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRun("openai", "gpt-4", "batch", "success", time.Second)

	if err := collector.WriteTextfile(); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(cfg.Textfile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "test_metrics_runs_total") {
		t.Errorf("textfile missing runs_total:\n%s", data)
	}

	cfg.Textfile = ""
	if err := collector.WriteTextfile(); err == nil {
		t.Error("WriteTextfile() without path error = nil")
	}
}
