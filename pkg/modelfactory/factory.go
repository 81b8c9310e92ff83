package modelfactory

import (
	"fmt"
	"log/slog"

	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/providers/anthropic"
	"mercator-hq/conduit/pkg/providers/generic"
	"mercator-hq/conduit/pkg/providers/openai"
)

// New creates the adapter described by a provider record.
//
// Supported adapter types:
//   - "openai": OpenAI chat completions
//   - "openai-completion": OpenAI legacy completions
//   - "anthropic": Anthropic Messages API
//   - "generic": OpenAI-compatible servers (Ollama, LM Studio, vLLM, etc.)
//
// When Type is empty it is derived from the tag; unknown tags are treated as
// generic servers.
//
// Example:
//
//	adapter, err := modelfactory.New(config.ProviderConfig{
//	    Name:   "openai",
//	    APIKey: "sk-...",
//	}, providers.CacheHooks{})
func New(p config.ProviderConfig, cache providers.CacheHooks) (providers.Adapter, error) {
	config.ApplyProviderDefaults(&p)
	if p.Type == "" {
		p.Type = config.TypeGeneric
	}

	pc := providers.ProviderConfig{
		Name:    p.Name,
		Type:    p.Type,
		BaseURL: p.BaseURL,
		APIKey:  p.APIKey,
		Quality: providers.Quality(p.Quality),
		Model:   p.Model,
		Debug:   p.Debug,
	}

	slog.Debug("creating adapter",
		"name", pc.Name,
		"type", pc.Type,
		"base_url", pc.BaseURL,
		"cache_mode", string(cache.Mode()),
	)

	var (
		adapter providers.Adapter
		err     error
	)
	switch p.Type {
	case config.TypeOpenAI:
		adapter, err = openai.NewChat(pc, cache)

	case config.TypeOpenAICompletion:
		adapter, err = openai.NewCompletion(pc, cache)

	case config.TypeAnthropic:
		adapter, err = anthropic.New(pc, cache)

	case config.TypeGeneric:
		adapter, err = generic.New(pc, cache)

	default:
		return nil, &providers.ConfigError{
			Provider: p.Name,
			Field:    "type",
			Message: fmt.Sprintf("unsupported adapter type: %q (supported: %s, %s, %s, %s)",
				p.Type, config.TypeOpenAI, config.TypeOpenAICompletion, config.TypeAnthropic, config.TypeGeneric),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create adapter %q: %w", p.Name, err)
	}

	return adapter, nil
}
