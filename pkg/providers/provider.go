package providers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// Adapter is the contract every LLM provider implements. It encapsulates
// everything provider-specific so the pipeline never branches on provider
// identity.
//
// Adapters are immutable after construction and safe for concurrent use.
//
// Example usage:
//
//	adapter, err := openai.NewChat(providers.ProviderConfig{
//	    Name:    "openai",
//	    APIKey:  key,
//	    Quality: providers.QualityLow,
//	}, providers.CacheHooks{})
//	if err != nil {
//	    return err
//	}
//
//	res, err := p.Run(ctx, adapter, &providers.RequestOptions{Prompt: "Hello!"}, providers.RequestMeta{})
type Adapter interface {
	// Config returns the static facts of the adapter.
	Config() ModelConfig

	// ModelID resolves the concrete provider model for a request.
	// It must be deterministic for a given configuration.
	ModelID(req *RequestOptions) string

	// Path returns the API path appended to the base URL.
	Path(req *RequestOptions) string

	// TransformForRequest maps a normalized request to the provider wire schema.
	// The resolved model id and stream flag are added by the pipeline.
	TransformForRequest(req *RequestOptions, meta RequestMeta) (WireRequest, error)

	// TransformResponse maps one wire payload (a full response or one stream
	// chunk) into one text fragment per generation slot. A slot with no content
	// yields "". An unrecognised shape returns a *DecodeError.
	TransformResponse(chunk []byte) ([]string, error)
}

// HeaderSetter is implemented by adapters that need request headers
// (authentication, API versioning).
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// StreamTerminator is implemented by adapters whose provider signals
// end-of-stream structurally instead of with a sentinel line.
type StreamTerminator interface {
	EndOfStream(payload []byte) bool
}

// CacheGetFunc looks up previously stored generations for a cache key.
type CacheGetFunc func(ctx context.Context, key string) ([]string, bool, error)

// CacheSetFunc stores generations under a cache key.
type CacheSetFunc func(ctx context.Context, key string, generations []string) error

// CacheHooks is the optional cache capability of an adapter.
// Either function may be nil.
type CacheHooks struct {
	Get CacheGetFunc
	Set CacheSetFunc
}

// CacheMode describes how an adapter's cache hooks are wired.
type CacheMode string

// Cache wiring modes
const (
	CacheDisabled  CacheMode = "disabled"
	CacheReadOnly  CacheMode = "read-only"
	CacheWriteOnly CacheMode = "write-only"
	CacheReadWrite CacheMode = "read-write"
)

// Mode reports which half of the cache contract is wired.
func (h CacheHooks) Mode() CacheMode {
	switch {
	case h.Get != nil && h.Set != nil:
		return CacheReadWrite
	case h.Get != nil:
		return CacheReadOnly
	case h.Set != nil:
		return CacheWriteOnly
	default:
		return CacheDisabled
	}
}

// ModelConfig holds the static facts of an adapter.
type ModelConfig struct {
	// ModelProvider is the adapter's tag
	ModelProvider string

	// IsStreamable reports whether the provider supports incremental responses
	IsStreamable bool

	// BaseURL is prefixed to Path to form the request URL
	BaseURL string

	// Debug enables raw request/response capture
	Debug bool

	// EndOfStreamSentinel is the literal data line that ends a stream.
	// Empty means the provider signals end-of-stream structurally.
	EndOfStreamSentinel string

	// Cache is the optional memoization capability
	Cache CacheHooks
}

// Validate checks the static facts. Partial cache wiring is legal and is
// reported at warn level so it never becomes a silent no-op.
func (c ModelConfig) Validate() error {
	if c.ModelProvider == "" {
		return &ConfigError{Provider: "unknown", Field: "model_provider", Message: "provider tag is required"}
	}
	if c.BaseURL == "" {
		return &ConfigError{Provider: c.ModelProvider, Field: "base_url", Message: "base URL is required"}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Provider: c.ModelProvider, Field: "base_url", Message: "base URL must be an absolute URL"}
	}

	switch mode := c.Cache.Mode(); mode {
	case CacheReadOnly, CacheWriteOnly:
		slog.Warn("adapter cache partially wired",
			"provider", c.ModelProvider,
			"cache_mode", string(mode),
		)
	default:
		slog.Debug("adapter cache wiring",
			"provider", c.ModelProvider,
			"cache_mode", string(mode),
		)
	}
	return nil
}

// Base carries the static facts shared by concrete adapters.
// Concrete adapters embed it and implement the remaining Adapter methods.
type Base struct {
	config ModelConfig
	apiKey string
}

// NewBase validates cfg and returns the embedded adapter base.
func NewBase(cfg ModelConfig, apiKey string) (Base, error) {
	if err := cfg.Validate(); err != nil {
		return Base{}, err
	}
	return Base{config: cfg, apiKey: apiKey}, nil
}

// Config returns the adapter's static facts.
func (b Base) Config() ModelConfig {
	return b.config
}

// APIKey returns the configured API key (may be empty).
func (b Base) APIKey() string {
	return b.apiKey
}
