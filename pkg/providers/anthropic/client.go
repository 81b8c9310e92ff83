package anthropic

import (
	"net/http"

	"mercator-hq/conduit/pkg/providers"
)

const (
	// DefaultBaseURL is Anthropic's public API endpoint
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"

	// DefaultMaxTokens is sent when the request does not set max_tokens
	DefaultMaxTokens = 1024

	// ModelLow is the model used for the low quality tier
	ModelLow = "claude-3-haiku-20240307"

	// ModelHigh is the model used for every other quality tier
	ModelHigh = "claude-3-opus-20240229"

	messagesPath = "/messages"
)

// Adapter targets Anthropic's Messages API. The stream has no sentinel line;
// it ends with a message_stop event.
type Adapter struct {
	providers.Base
	model string
}

// New creates a new Anthropic adapter. An API key is required.
func New(cfg providers.ProviderConfig, cache providers.CacheHooks) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = ModelHigh
		if cfg.Quality == providers.QualityLow {
			model = ModelLow
		}
	}

	base, err := providers.NewBase(providers.ModelConfig{
		ModelProvider: cfg.Name,
		IsStreamable:  true,
		BaseURL:       cfg.BaseURL,
		Debug:         cfg.Debug,
		Cache:         cache,
	}, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	return &Adapter{Base: base, model: model}, nil
}

// ModelID returns the model resolved from the quality tier at construction.
func (a *Adapter) ModelID(*providers.RequestOptions) string {
	return a.model
}

// Path returns the messages path.
func (a *Adapter) Path(*providers.RequestOptions) string {
	return messagesPath
}

// TransformForRequest builds a Messages API body.
func (a *Adapter) TransformForRequest(req *providers.RequestOptions, meta providers.RequestMeta) (providers.WireRequest, error) {
	return transformRequest(req, meta)
}

// TransformResponse decodes a full message or one stream event.
func (a *Adapter) TransformResponse(chunk []byte) ([]string, error) {
	return transformResponse(a.Config().ModelProvider, chunk)
}

// EndOfStream reports the structural end of an Anthropic stream.
func (a *Adapter) EndOfStream(payload []byte) bool {
	return isMessageStop(payload)
}

// SetHeaders sets the API key and version headers.
func (a *Adapter) SetHeaders(h http.Header) {
	h.Set("x-api-key", a.APIKey())
	h.Set("anthropic-version", DefaultAnthropicVersion)
}
