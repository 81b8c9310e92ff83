package generic

import (
	"log/slog"

	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/providers/openai"
)

// DefaultBaseURL is the local endpoint used when none is configured (Ollama).
const DefaultBaseURL = "http://localhost:11434/v1"

// Adapter is a generic OpenAI-compatible adapter.
// It supports any server that implements the OpenAI chat API format,
// such as Ollama, LM Studio, vLLM, FastChat, etc.
//
// This adapter reuses the OpenAI request/response format but allows
// for custom base URLs, optional API keys and arbitrary model names.
type Adapter struct {
	*openai.ChatAdapter
	model string
}

// New creates a new generic OpenAI-compatible adapter.
func New(cfg providers.ProviderConfig, cache providers.CacheHooks) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "local"
	}

	// API key is optional for generic providers (local models don't need it)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	model := cfg.Model
	chat, err := openai.NewCompatible(cfg, cache)
	if err != nil {
		return nil, err
	}

	slog.Debug("generic OpenAI-compatible adapter initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
		"model", model,
	)

	return &Adapter{ChatAdapter: chat, model: model}, nil
}

// ModelID returns the configured model, falling back to the request's
// abstract model id. Quality tiers do not apply to local servers.
func (a *Adapter) ModelID(req *providers.RequestOptions) string {
	if a.model != "" {
		return a.model
	}
	if req == nil {
		return ""
	}
	return req.ModelID
}
