package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
)

// ErrUnknownProvider is returned when a provider tag is neither configured
// nor one of the known tags.
var ErrUnknownProvider = errors.New("unknown provider")

// Manager is the file-backed source of provider configuration. It is the
// only component that persists configuration; the pipeline and adapters only
// read what it hands out.
//
// Reads return the persisted configuration with CONDUIT_* environment
// overrides applied. Writes persist only what was set through the Manager,
// so keys supplied through the environment never end up on disk.
//
// Manager is safe for concurrent use.
type Manager struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	file *Config

	subMu       sync.Mutex
	subscribers []func(*Config)
}

// NewManager loads the configuration file at path. A missing file is not an
// error: the manager starts from defaults and creates the file on first save.
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:   path,
		logger: slog.Default().With("component", "config.manager"),
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Path returns the configuration file path.
func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) load() error {
	cfg, err := LoadConfig(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
		ApplyDefaults(cfg)
		m.logger.Debug("configuration file not found, using defaults", "path", m.path)
	} else if err != nil {
		return err
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	m.mu.Lock()
	m.file = cfg
	m.mu.Unlock()
	return nil
}

// Reload re-reads the configuration file and notifies subscribers. On error
// the current configuration is kept.
func (m *Manager) Reload() error {
	if err := m.load(); err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.logger.Info("configuration reloaded", "path", m.path)
	m.notify()
	return nil
}

// Config returns a copy of the effective configuration (file plus
// environment overrides).
func (m *Manager) Config() *Config {
	m.mu.RLock()
	cfg := cloneConfig(m.file)
	m.mu.RUnlock()

	ApplyEnvOverrides(cfg)
	return cfg
}

// Get returns the configuration for a provider tag.
func (m *Manager) Get(tag string) (ProviderConfig, bool) {
	p, ok := m.Config().Providers[tag]
	return p, ok
}

// GetDefault returns the configuration of the default provider. When the
// default provider has no saved record a fresh one from Init is returned.
func (m *Manager) GetDefault() ProviderConfig {
	cfg := m.Config()
	if p, ok := cfg.Providers[cfg.DefaultProvider]; ok {
		return p
	}
	return m.Init(cfg.DefaultProvider)
}

// Init returns a fresh, unsaved provider record for tag with defaults
// applied.
func (m *Manager) Init(tag string) ProviderConfig {
	p := ProviderConfig{Name: tag}
	ApplyProviderDefaults(&p)
	return p
}

// Save validates and persists a provider record under its Name.
func (m *Manager) Save(p ProviderConfig) error {
	if p.Name == "" {
		return FieldError{Field: "providers", Message: "provider name is required"}
	}
	ApplyProviderDefaults(&p)
	if errs := ValidateProvider(p.Name, p); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	err := m.update(func(cfg *Config) {
		cfg.Providers[p.Name] = p
	})
	if err != nil {
		return err
	}

	m.logger.Info("provider configuration saved",
		"provider", p.Name,
		"type", p.Type,
		"has_api_key", p.APIKey != "",
	)
	return nil
}

// SetDefault makes tag the default provider.
func (m *Manager) SetDefault(tag string) error {
	if !m.knows(tag) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, tag)
	}
	err := m.update(func(cfg *Config) {
		cfg.DefaultProvider = tag
	})
	if err != nil {
		return err
	}

	m.logger.Info("default provider changed", "provider", tag)
	return nil
}

// Delete removes a saved provider record.
func (m *Manager) Delete(tag string) error {
	return m.update(func(cfg *Config) {
		delete(cfg.Providers, tag)
	})
}

// Tags returns the configured and known provider tags, sorted.
func (m *Manager) Tags() []string {
	tags := []string{ProviderOpenAI, ProviderOpenAICompletion, ProviderAnthropic, ProviderLocal}
	for tag := range m.Config().Providers {
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

// Subscribe registers fn to be called with the effective configuration after
// every change made through the manager or picked up by Reload.
func (m *Manager) Subscribe(fn func(*Config)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Manager) knows(tag string) bool {
	if _, ok := DefaultType[tag]; ok {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.file.Providers[tag]
	return ok
}

// update applies fn to a copy of the persisted configuration, writes it, and
// swaps it in only when the write succeeds.
func (m *Manager) update(fn func(*Config)) error {
	m.mu.Lock()
	next := cloneConfig(m.file)
	fn(next)
	if err := SaveConfig(m.path, next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.file = next
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *Manager) notify() {
	m.subMu.Lock()
	subs := slices.Clone(m.subscribers)
	m.subMu.Unlock()

	if len(subs) == 0 {
		return
	}
	cfg := m.Config()
	for _, fn := range subs {
		fn(cfg)
	}
}

func cloneConfig(cfg *Config) *Config {
	out := *cfg
	out.Providers = maps.Clone(cfg.Providers)
	if out.Providers == nil {
		out.Providers = make(map[string]ProviderConfig)
	}
	out.Telemetry.Metrics.RequestDurationBuckets = slices.Clone(cfg.Telemetry.Metrics.RequestDurationBuckets)
	return &out
}

// Exists reports whether the configuration file is present on disk.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}
