package config

import "time"

// Provider tags known out of the box.
const (
	ProviderOpenAI           = "openai"
	ProviderOpenAICompletion = "openai-completion"
	ProviderAnthropic        = "anthropic"
	ProviderLocal            = "local"
)

// Adapter types.
const (
	TypeOpenAI           = "openai"
	TypeOpenAICompletion = "openai-completion"
	TypeAnthropic        = "anthropic"
	TypeGeneric          = "generic"
)

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProvider = ProviderOpenAI
	DefaultQuality  = "high"

	// Cache defaults
	DefaultCacheBackend       = "memory"
	DefaultCacheMode          = "read-write"
	DefaultCacheTTL           = 24 * time.Hour
	DefaultCacheMaxEntries    = 1000
	DefaultCacheSQLitePath    = "data/cache.db"
	DefaultCachePruneSchedule = "0 * * * *"

	// SQLite defaults
	DefaultSQLiteWALMode     = true
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Replay defaults
	DefaultReplayBackend         = "log"
	DefaultReplaySQLitePath      = "data/replay.db"
	DefaultReplayMaxPayloadBytes = 64 << 10
	DefaultReplayRetentionDays   = 7
	DefaultReplayPruneSchedule   = "0 3 * * *"

	// Transport defaults
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second

	// Secrets defaults
	DefaultSecretsEnvPrefix = "CONDUIT_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultMetricsNamespace   = "conduit"
	DefaultMetricsSubsystem   = "pipeline"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "conduit"
	DefaultOTLPTimeout        = 10 * time.Second
)

// DefaultCompletionURL is the API base URL used for a provider tag when the
// user has not set one.
var DefaultCompletionURL = map[string]string{
	ProviderOpenAI:           "https://api.openai.com/v1",
	ProviderOpenAICompletion: "https://api.openai.com/v1",
	ProviderAnthropic:        "https://api.anthropic.com/v1",
	ProviderLocal:            "http://localhost:11434/v1",
}

// DefaultType maps known provider tags to their adapter type.
var DefaultType = map[string]string{
	ProviderOpenAI:           TypeOpenAI,
	ProviderOpenAICompletion: TypeOpenAICompletion,
	ProviderAnthropic:        TypeAnthropic,
	ProviderLocal:            TypeGeneric,
}

// DefaultRequestDurationBuckets are the pipeline latency histogram buckets (seconds).
var DefaultRequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = DefaultProvider
	}

	// Provider defaults - applied to each provider
	for name, provider := range cfg.Providers {
		provider.Name = name
		ApplyProviderDefaults(&provider)
		cfg.Providers[name] = provider
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.Mode == "" {
		cfg.Cache.Mode = DefaultCacheMode
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.SQLite.Path == "" {
		cfg.Cache.SQLite.Path = DefaultCacheSQLitePath
	}
	if cfg.Cache.SQLite.BusyTimeout == 0 {
		cfg.Cache.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
		cfg.Cache.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Cache.PruneSchedule == "" {
		cfg.Cache.PruneSchedule = DefaultCachePruneSchedule
	}

	// Replay defaults
	if cfg.Replay.Backend == "" {
		cfg.Replay.Backend = DefaultReplayBackend
	}
	if cfg.Replay.SQLite.Path == "" {
		cfg.Replay.SQLite.Path = DefaultReplaySQLitePath
	}
	if cfg.Replay.SQLite.BusyTimeout == 0 {
		cfg.Replay.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
		cfg.Replay.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Replay.MaxPayloadBytes == 0 {
		cfg.Replay.MaxPayloadBytes = DefaultReplayMaxPayloadBytes
	}
	if cfg.Replay.Retention.Days == 0 {
		cfg.Replay.Retention.Days = DefaultReplayRetentionDays
	}
	if cfg.Replay.Retention.PruneSchedule == "" {
		cfg.Replay.Retention.PruneSchedule = DefaultReplayPruneSchedule
	}

	// Transport defaults
	if cfg.Transport.MaxIdleConns == 0 {
		cfg.Transport.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Transport.MaxIdleConnsPerHost == 0 {
		cfg.Transport.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.Transport.IdleConnTimeout == 0 {
		cfg.Transport.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 && cfg.Telemetry.Tracing.Sampler == DefaultTracingSampler {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}

// ApplyProviderDefaults fills the type, base URL and quality of a provider
// record from its tag.
func ApplyProviderDefaults(p *ProviderConfig) {
	if p.Type == "" {
		p.Type = DefaultType[p.Name]
	}
	if p.BaseURL == "" {
		p.BaseURL = DefaultCompletionURL[p.Name]
	}
	if p.Quality == "" {
		p.Quality = DefaultQuality
	}
}

// RequiresAPIKey reports whether the adapter type needs an API key.
// Local OpenAI-compatible servers do not.
func RequiresAPIKey(providerType string) bool {
	return providerType != TypeGeneric
}
