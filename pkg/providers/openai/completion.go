package openai

import (
	"net/http"
	"strings"

	"mercator-hq/conduit/pkg/providers"
)

const (
	// CompletionModelLow is the completion model used for the low quality tier
	CompletionModelLow = "text-curie-001"

	// CompletionModelHigh is the completion model used for every other quality tier
	CompletionModelHigh = "text-davinci-003"

	completionPath = "/completions"
)

// CompletionAdapter targets OpenAI's legacy text completions endpoint, whose
// choices carry text instead of message or delta objects.
type CompletionAdapter struct {
	providers.Base
	model string
}

// NewCompletion creates a completion adapter. An API key is required.
func NewCompletion(cfg providers.ProviderConfig, cache providers.CacheHooks) (*CompletionAdapter, error) {
	if cfg.Name == "" {
		cfg.Name = "openai-completion"
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
		model = CompletionModelHigh
		if cfg.Quality == providers.QualityLow {
			model = CompletionModelLow
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

	return &CompletionAdapter{Base: base, model: model}, nil
}

// ModelID returns the model resolved from the quality tier at construction.
func (a *CompletionAdapter) ModelID(*providers.RequestOptions) string {
	return a.model
}

// Path returns the completions path.
func (a *CompletionAdapter) Path(*providers.RequestOptions) string {
	return completionPath
}

// TransformForRequest builds the completion body. Messages are rendered as
// "role: content" lines ahead of the prompt.
func (a *CompletionAdapter) TransformForRequest(req *providers.RequestOptions, meta providers.RequestMeta) (providers.WireRequest, error) {
	wire := baseWireRequest(req, meta)
	delete(wire, "messages")
	wire["prompt"] = renderPrompt(req)
	return wire, nil
}

// TransformResponse decodes a completion response or stream chunk.
func (a *CompletionAdapter) TransformResponse(chunk []byte) ([]string, error) {
	return DecodeChoices(a.Config().ModelProvider, chunk)
}

// SetHeaders sets the bearer token.
func (a *CompletionAdapter) SetHeaders(h http.Header) {
	setBearer(h, a.APIKey())
}

func renderPrompt(req *providers.RequestOptions) string {
	if len(req.Messages) == 0 {
		return req.Prompt
	}

	var b strings.Builder
	for _, m := range req.ConversationWithPrompt() {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString(providers.RoleAssistant + ":")
	return b.String()
}
