package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "cache.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Missing API keys are not validation errors: keys are often set after the
// file is created (conduit config set-key) and adapter construction reports
// them.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateReplay(&cfg.Replay)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	for name, provider := range providers {
		errs = append(errs, ValidateProvider(name, provider)...)
	}

	return errs
}

// ValidateProvider validates a single provider record.
func ValidateProvider(name string, provider ProviderConfig) []FieldError {
	var errs []FieldError
	prefix := fmt.Sprintf("providers.%s", name)

	switch provider.Type {
	case TypeOpenAI, TypeOpenAICompletion, TypeAnthropic, TypeGeneric:
	case "":
		errs = append(errs, FieldError{
			Field:   prefix + ".type",
			Message: "type is required for providers with a custom tag",
		})
	default:
		errs = append(errs, FieldError{
			Field:   prefix + ".type",
			Message: fmt.Sprintf("invalid provider type %q: must be 'openai', 'openai-completion', 'anthropic', or 'generic'", provider.Type),
		})
	}

	if provider.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: fmt.Sprintf("invalid URL %q: must be absolute", provider.BaseURL),
		})
	}

	switch provider.Quality {
	case "", "low", "high":
	default:
		errs = append(errs, FieldError{
			Field:   prefix + ".quality",
			Message: fmt.Sprintf("invalid quality %q: must be 'low' or 'high'", provider.Quality),
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("invalid cache backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	switch cfg.Mode {
	case "read-write", "read-only", "write-only":
	default:
		errs = append(errs, FieldError{
			Field:   "cache.mode",
			Message: fmt.Sprintf("invalid cache mode %q: must be 'read-write', 'read-only', or 'write-only'", cfg.Mode),
		})
	}

	if cfg.TTL < 0 {
		errs = append(errs, FieldError{Field: "cache.ttl", Message: "TTL must be non-negative"})
	}
	if cfg.MaxEntries < 0 {
		errs = append(errs, FieldError{Field: "cache.max_entries", Message: "max entries must be non-negative"})
	}
	if cfg.Enabled && cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{Field: "cache.sqlite.path", Message: "path is required for the sqlite backend"})
	}
	if err := validateSchedule(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{Field: "cache.prune_schedule", Message: err.Error()})
	}

	return errs
}

func validateReplay(cfg *ReplayConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "log", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "replay.backend",
			Message: fmt.Sprintf("invalid replay backend %q: must be 'log' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.MaxPayloadBytes < 0 {
		errs = append(errs, FieldError{Field: "replay.max_payload_bytes", Message: "must be non-negative"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "replay.retention.days", Message: "must be non-negative"})
	}
	if err := validateSchedule(cfg.Retention.PruneSchedule); err != nil {
		errs = append(errs, FieldError{Field: "replay.retention.prune_schedule", Message: err.Error()})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

// validateSchedule checks a standard five-field cron expression.
func validateSchedule(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
