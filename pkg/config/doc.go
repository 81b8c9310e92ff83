// Package config provides configuration management for Conduit.
//
// This package handles loading, validating, persisting and watching the
// YAML configuration that parameterizes provider adapters.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("conduit.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("conduit.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CONDUIT_SECTION_FIELD.
// For example:
//
//   - CONDUIT_DEFAULT_PROVIDER overrides default_provider
//   - CONDUIT_PROVIDERS_OPENAI_API_KEY overrides providers.openai.api_key
//   - CONDUIT_PROVIDERS_OPENAI_COMPLETION_QUALITY overrides providers.openai-completion.quality
//   - CONDUIT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Provider Records
//
// Manager exposes the provider records the way a settings screen uses them:
//
//	m, err := config.NewManager("conduit.yaml")
//	p, ok := m.Get("openai")
//	if !ok {
//	    p = m.Init("openai")
//	}
//	p.APIKey = key
//	err = m.Save(p)
//	err = m.SetDefault("openai")
//
// Known tags ("openai", "openai-completion", "anthropic", "local") get their
// adapter type and DefaultCompletionURL automatically. The "local" provider
// needs no API key.
//
// # Hot Reload
//
// FileWatcher reloads the Manager when the file is edited externally;
// Manager.Subscribe receives the new configuration.
package config
