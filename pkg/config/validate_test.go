package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"openai": {APIKey: "sk-test"},
			"local":  {Model: "llama3"},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "missing api key is allowed",
			mutate: func(cfg *Config) {
				p := cfg.Providers["openai"]
				p.APIKey = ""
				cfg.Providers["openai"] = p
			},
		},
		{
			name: "invalid provider type",
			mutate: func(cfg *Config) {
				p := cfg.Providers["openai"]
				p.Type = "cohere"
				cfg.Providers["openai"] = p
			},
			wantField: "providers.openai.type",
		},
		{
			name: "relative base url",
			mutate: func(cfg *Config) {
				p := cfg.Providers["local"]
				p.BaseURL = "localhost:11434"
				cfg.Providers["local"] = p
			},
			wantField: "providers.local.base_url",
		},
		{
			name: "invalid quality",
			mutate: func(cfg *Config) {
				p := cfg.Providers["openai"]
				p.Quality = "medium"
				cfg.Providers["openai"] = p
			},
			wantField: "providers.openai.quality",
		},
		{
			name:      "invalid cache backend",
			mutate:    func(cfg *Config) { cfg.Cache.Backend = "redis" },
			wantField: "cache.backend",
		},
		{
			name:      "invalid cache mode",
			mutate:    func(cfg *Config) { cfg.Cache.Mode = "sometimes" },
			wantField: "cache.mode",
		},
		{
			name:      "negative ttl",
			mutate:    func(cfg *Config) { cfg.Cache.TTL = -1 },
			wantField: "cache.ttl",
		},
		{
			name:      "invalid replay backend",
			mutate:    func(cfg *Config) { cfg.Replay.Backend = "s3" },
			wantField: "replay.backend",
		},
		{
			name:      "invalid retention schedule",
			mutate:    func(cfg *Config) { cfg.Replay.Retention.PruneSchedule = "61 * * * *" },
			wantField: "replay.retention.prune_schedule",
		},
		{
			name:      "invalid log level",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "tracing without endpoint",
			mutate:    func(cfg *Config) { cfg.Telemetry.Tracing.Enabled = true },
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name:      "sample ratio out of range",
			mutate:    func(cfg *Config) { cfg.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want field %q", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "cache.mode", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: cache.mode: bad" {
		t.Errorf("Error() = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: y") {
		t.Errorf("Error() = %q", got)
	}
}

func TestApplyProviderDefaults(t *testing.T) {
	tests := []struct {
		tag      string
		wantType string
		wantURL  string
	}{
		{"openai", TypeOpenAI, "https://api.openai.com/v1"},
		{"openai-completion", TypeOpenAICompletion, "https://api.openai.com/v1"},
		{"anthropic", TypeAnthropic, "https://api.anthropic.com/v1"},
		{"local", TypeGeneric, "http://localhost:11434/v1"},
		{"custom", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			p := ProviderConfig{Name: tt.tag}
			ApplyProviderDefaults(&p)
			if p.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", p.Type, tt.wantType)
			}
			if p.BaseURL != tt.wantURL {
				t.Errorf("BaseURL = %q, want %q", p.BaseURL, tt.wantURL)
			}
			if p.Quality != DefaultQuality {
				t.Errorf("Quality = %q, want %q", p.Quality, DefaultQuality)
			}
		})
	}
}

func TestRequiresAPIKey(t *testing.T) {
	if RequiresAPIKey(TypeGeneric) {
		t.Error("RequiresAPIKey(generic) = true, want false")
	}
	for _, typ := range []string{TypeOpenAI, TypeOpenAICompletion, TypeAnthropic} {
		if !RequiresAPIKey(typ) {
			t.Errorf("RequiresAPIKey(%q) = false, want true", typ)
		}
	}
}
