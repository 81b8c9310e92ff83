package modelfactory

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/providers/anthropic"
	"mercator-hq/conduit/pkg/providers/generic"
	"mercator-hq/conduit/pkg/providers/openai"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.ProviderConfig
		wantModel string
		check     func(t *testing.T, a providers.Adapter)
	}{
		{
			name:      "openai high",
			cfg:       config.ProviderConfig{Name: "openai", APIKey: "sk-test"},
			wantModel: "gpt-4",
			check: func(t *testing.T, a providers.Adapter) {
				if _, ok := a.(*openai.ChatAdapter); !ok {
					t.Errorf("got %T, want *openai.ChatAdapter", a)
				}
			},
		},
		{
			name:      "openai low",
			cfg:       config.ProviderConfig{Name: "openai", APIKey: "sk-test", Quality: "low"},
			wantModel: "gpt-3.5-turbo",
		},
		{
			name:      "completion",
			cfg:       config.ProviderConfig{Name: "openai-completion", APIKey: "sk-test", Quality: "low"},
			wantModel: "text-curie-001",
			check: func(t *testing.T, a providers.Adapter) {
				if _, ok := a.(*openai.CompletionAdapter); !ok {
					t.Errorf("got %T, want *openai.CompletionAdapter", a)
				}
			},
		},
		{
			name:      "anthropic",
			cfg:       config.ProviderConfig{Name: "anthropic", APIKey: "key"},
			wantModel: "claude-3-opus-20240229",
			check: func(t *testing.T, a providers.Adapter) {
				if _, ok := a.(*anthropic.Adapter); !ok {
					t.Errorf("got %T, want *anthropic.Adapter", a)
				}
				if a.Config().EndOfStreamSentinel != "" {
					t.Error("anthropic has no sentinel")
				}
			},
		},
		{
			name:      "local without key",
			cfg:       config.ProviderConfig{Name: "local", Model: "llama3"},
			wantModel: "llama3",
			check: func(t *testing.T, a providers.Adapter) {
				if _, ok := a.(*generic.Adapter); !ok {
					t.Errorf("got %T, want *generic.Adapter", a)
				}
				if a.Config().BaseURL != config.DefaultCompletionURL["local"] {
					t.Errorf("BaseURL = %q", a.Config().BaseURL)
				}
			},
		},
		{
			name:      "unknown tag is generic",
			cfg:       config.ProviderConfig{Name: "gateway", BaseURL: "http://gw.internal/v1", Model: "m"},
			wantModel: "m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg, providers.CacheHooks{})
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if got := a.ModelID(&providers.RequestOptions{}); got != tt.wantModel {
				t.Errorf("ModelID = %q, want %q", got, tt.wantModel)
			}
			if a.Config().ModelProvider != tt.cfg.Name {
				t.Errorf("ModelProvider = %q, want %q", a.Config().ModelProvider, tt.cfg.Name)
			}
			if tt.check != nil {
				tt.check(t, a)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.ProviderConfig
		field string
	}{
		{"missing key", config.ProviderConfig{Name: "openai"}, "api_key"},
		{"unsupported type", config.ProviderConfig{Name: "x", Type: "bedrock"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, providers.CacheHooks{})
			var cerr *providers.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestNew_CacheHooks(t *testing.T) {
	hooks := providers.CacheHooks{
		Set: func(_ context.Context, _ string, _ []string) error { return nil },
	}
	a, err := New(config.ProviderConfig{Name: "local", Model: "m"}, hooks)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if mode := a.Config().Cache.Mode(); mode != providers.CacheWriteOnly {
		t.Errorf("cache mode = %q, want write-only", mode)
	}
}
