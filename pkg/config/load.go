package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	return parseConfig(path, data)
}

func parseConfig(path string, data []byte) (*Config, error) {
	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CONDUIT_SECTION_FIELD (e.g., CONDUIT_CACHE_BACKEND).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	ApplyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration as YAML. The file is replaced
// atomically so a concurrent reader or watcher never sees a partial write.
// The file is created with 0600 permissions since it holds API keys.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".conduit-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace configuration file %q: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format CONDUIT_SECTION_FIELD.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CONDUIT_DEFAULT_PROVIDER"); val != "" {
		cfg.DefaultProvider = val
	}

	// Provider overrides cover every configured tag plus the known tags
	tags := []string{ProviderOpenAI, ProviderOpenAICompletion, ProviderAnthropic, ProviderLocal}
	for name := range cfg.Providers {
		if !slices.Contains(tags, name) {
			tags = append(tags, name)
		}
	}
	for _, name := range tags {
		applyProviderEnvOverrides(cfg, name)
	}

	// Cache overrides
	if val := os.Getenv("CONDUIT_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if val := os.Getenv("CONDUIT_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	if val := os.Getenv("CONDUIT_CACHE_MODE"); val != "" {
		cfg.Cache.Mode = val
	}
	if val := os.Getenv("CONDUIT_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if val := os.Getenv("CONDUIT_CACHE_SQLITE_PATH"); val != "" {
		cfg.Cache.SQLite.Path = val
	}

	// Replay overrides
	if val := os.Getenv("CONDUIT_REPLAY_BACKEND"); val != "" {
		cfg.Replay.Backend = val
	}
	if val := os.Getenv("CONDUIT_REPLAY_SQLITE_PATH"); val != "" {
		cfg.Replay.SQLite.Path = val
	}
	if val := os.Getenv("CONDUIT_REPLAY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Replay.Retention.Days = i
		}
	}

	// Secrets overrides
	if val := os.Getenv("CONDUIT_SECRETS_DIR"); val != "" {
		cfg.Secrets.Dir = val
	}

	// Telemetry overrides
	if val := os.Getenv("CONDUIT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CONDUIT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CONDUIT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CONDUIT_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("CONDUIT_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("CONDUIT_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// applyProviderEnvOverrides applies environment variable overrides for a specific provider.
// Provider environment variables follow the format CONDUIT_PROVIDERS_<TAG>_<FIELD>
// where TAG is the uppercase provider tag with dashes replaced by underscores.
func applyProviderEnvOverrides(cfg *Config, providerName string) {
	// Initialize providers map if nil
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	// Get existing provider config or create new one
	provider, exists := cfg.Providers[providerName]
	if !exists {
		provider = ProviderConfig{Name: providerName}
	}

	// Build environment variable prefix
	envTag := strings.ReplaceAll(strings.ToUpper(providerName), "-", "_")
	prefix := fmt.Sprintf("CONDUIT_PROVIDERS_%s_", envTag)

	// Check for overrides
	modified := false

	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		provider.BaseURL = val
		modified = true
	}
	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		provider.APIKey = val
		modified = true
	}
	if val := os.Getenv(prefix + "QUALITY"); val != "" {
		provider.Quality = val
		modified = true
	}
	if val := os.Getenv(prefix + "MODEL"); val != "" {
		provider.Model = val
		modified = true
	}
	if val := os.Getenv(prefix + "DEBUG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			provider.Debug = b
			modified = true
		}
	}

	// Only update the map if we found at least one override
	if modified {
		ApplyProviderDefaults(&provider)
	}
	if modified || exists {
		cfg.Providers[providerName] = provider
	}
}
