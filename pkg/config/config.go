package config

import "time"

// Config is the root configuration structure for Conduit.
// It contains the per-provider settings managed through Manager plus the
// cache, debug capture, transport and telemetry sections.
type Config struct {
	// DefaultProvider is the tag of the provider used when none is given.
	DefaultProvider string `yaml:"default_provider"`

	// Providers contains configuration for all LLM provider integrations.
	// Keys are provider tags (e.g., "openai", "local").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Cache contains response cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// Replay contains configuration for debug capture of raw provider traffic.
	Replay ReplayConfig `yaml:"replay"`

	// Transport contains outbound HTTP connection pool settings.
	Transport TransportConfig `yaml:"transport"`

	// Secrets configures resolution of ${secret:name} references in API keys.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig contains configuration for a single LLM provider.
type ProviderConfig struct {
	// Name is the provider tag. It is the key of Config.Providers and is
	// filled in on load.
	Name string `yaml:"-"`

	// Type selects the adapter.
	// Options: "openai", "openai-completion", "anthropic", "generic"
	// Default: derived from the tag for known tags
	Type string `yaml:"type"`

	// BaseURL is the base URL for the provider's API endpoint. Setting it
	// routes requests through a proxy.
	// Default: DefaultCompletionURL for the tag
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider.
	// Required for every type except "generic".
	APIKey string `yaml:"api_key"`

	// Quality selects the model tier.
	// Options: "low", "high"
	// Default: "high"
	Quality string `yaml:"quality"`

	// Model overrides the model resolved from Quality.
	// Required for "generic" unless every request names a model.
	Model string `yaml:"model,omitempty"`

	// Debug enables capture of raw requests and responses.
	// Default: false
	Debug bool `yaml:"debug"`
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	// Enabled controls whether responses are cached.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Mode selects which half of the cache contract is wired.
	// Options: "read-write", "read-only", "write-only"
	// Default: "read-write"
	Mode string `yaml:"mode"`

	// TTL is how long an entry stays valid. 0 means entries never expire.
	// Default: 24h
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries bounds the memory store (LRU eviction).
	// Default: 1000
	MaxEntries int `yaml:"max_entries"`

	// SQLite contains SQLite store configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// PruneSchedule is a cron expression for deleting expired entries.
	// Default: "0 * * * *" (hourly)
	PruneSchedule string `yaml:"prune_schedule"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ReplayConfig contains debug capture configuration.
type ReplayConfig struct {
	// Backend selects where captures go.
	// Options: "log", "sqlite"
	// Default: "log"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite store configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// MaxPayloadBytes truncates captured payloads. 0 means no limit.
	// Default: 65536
	MaxPayloadBytes int `yaml:"max_payload_bytes"`

	// Retention contains capture retention configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain captures.
	// 0 means keep captures forever (no pruning).
	// Default: 7
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TransportConfig contains outbound HTTP connection pool settings.
type TransportConfig struct {
	// MaxIdleConns is the maximum number of idle connections in the pool.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection remains in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// SecretsConfig configures where ${secret:name} references are looked up.
// Sources are tried in order: the secrets directory, then the environment.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable ("openai-key" -> CONDUIT_SECRET_OPENAI_KEY).
	// Default: "CONDUIT_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, named after the secret. Files must be
	// mode 0600 or 0400. Empty disables the file source.
	Dir string `yaml:"dir"`

	// Watch reloads secret files when they change.
	// Default: false
	Watch bool `yaml:"watch"`

	// CacheTTL is how long a resolved secret is reused. 0 disables caching.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactKeys masks API keys and bearer tokens in log attributes.
	// Default: true
	RedactKeys *bool `yaml:"redact_keys,omitempty"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "conduit"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "pipeline"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`

	// Textfile is written with the collected metrics when the process
	// exits, in the format read by the node exporter textfile collector.
	// Empty disables the export.
	Textfile string `yaml:"textfile"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "conduit"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// RedactKeysEnabled reports whether API key redaction is on (default true).
func (c LoggingConfig) RedactKeysEnabled() bool {
	return c.RedactKeys == nil || *c.RedactKeys
}
