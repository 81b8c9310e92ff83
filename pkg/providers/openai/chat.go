package openai

import (
	"net/http"

	"mercator-hq/conduit/pkg/providers"
)

const (
	// DefaultBaseURL is OpenAI's public API endpoint
	DefaultBaseURL = "https://api.openai.com/v1"

	// StreamSentinel terminates OpenAI server-sent event streams
	StreamSentinel = "[DONE]"

	// ChatModelLow is the chat model used for the low quality tier
	ChatModelLow = "gpt-3.5-turbo"

	// ChatModelHigh is the chat model used for every other quality tier
	ChatModelHigh = "gpt-4"

	chatPath = "/chat/completions"
)

// ChatAdapter targets OpenAI's chat completions endpoint.
type ChatAdapter struct {
	providers.Base
	model string
}

// NewChat creates a chat adapter. An API key is required.
func NewChat(cfg providers.ProviderConfig, cache providers.CacheHooks) (*ChatAdapter, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	return NewCompatible(cfg, cache)
}

// NewCompatible creates a chat adapter without the API key requirement, for
// OpenAI-compatible servers.
func NewCompatible(cfg providers.ProviderConfig, cache providers.CacheHooks) (*ChatAdapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = ChatModelHigh
		if cfg.Quality == providers.QualityLow {
			model = ChatModelLow
		}
	}

	base, err := providers.NewBase(providers.ModelConfig{
		ModelProvider:       cfg.Name,
		IsStreamable:        true,
		BaseURL:             cfg.BaseURL,
		Debug:               cfg.Debug,
		EndOfStreamSentinel: StreamSentinel,
		Cache:               cache,
	}, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	return &ChatAdapter{Base: base, model: model}, nil
}

// ModelID returns the model resolved from the quality tier at construction.
func (a *ChatAdapter) ModelID(*providers.RequestOptions) string {
	return a.model
}

// Path returns the chat completions path.
func (a *ChatAdapter) Path(*providers.RequestOptions) string {
	return chatPath
}

// TransformForRequest builds the chat completion body. A bare prompt is
// appended after all messages as a trailing user turn.
func (a *ChatAdapter) TransformForRequest(req *providers.RequestOptions, meta providers.RequestMeta) (providers.WireRequest, error) {
	wire := baseWireRequest(req, meta)
	wire["messages"] = transformMessages(req)
	return wire, nil
}

// TransformResponse decodes a chat response or stream chunk.
func (a *ChatAdapter) TransformResponse(chunk []byte) ([]string, error) {
	return DecodeChoices(a.Config().ModelProvider, chunk)
}

// SetHeaders sets the bearer token when an API key is configured.
func (a *ChatAdapter) SetHeaders(h http.Header) {
	setBearer(h, a.APIKey())
}

func setBearer(h http.Header, key string) {
	if key != "" {
		h.Set("Authorization", "Bearer "+key)
	}
}
