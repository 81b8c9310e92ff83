package modelfactory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/providers"
)

// Manager hands out one adapter per provider tag. Adapters are built lazily
// from the configuration manager and rebuilt after every configuration
// change, since they are immutable once constructed.
//
// Manager is thread-safe and can be used concurrently.
type Manager struct {
	configs  *config.Manager
	cache    providers.CacheHooks
	secrets  SecretResolver
	adapters map[string]providers.Adapter
	mu       sync.RWMutex
	logger   *slog.Logger
}

// SecretResolver expands ${secret:name} references in API keys.
type SecretResolver interface {
	Resolve(ctx context.Context, s string) (string, error)
}

// NewManager creates a manager over configs. cache is wired into every
// adapter it builds.
func NewManager(configs *config.Manager, cache providers.CacheHooks) *Manager {
	m := &Manager{
		configs:  configs,
		cache:    cache,
		adapters: make(map[string]providers.Adapter),
		logger:   slog.Default().With("component", "modelfactory"),
	}
	configs.Subscribe(func(*config.Config) { m.Invalidate() })
	return m
}

// Get returns the adapter for tag, building it on first use. A tag with no
// saved record is built from defaults when it is one of the known tags.
func (m *Manager) Get(tag string) (providers.Adapter, error) {
	m.mu.RLock()
	adapter, ok := m.adapters[tag]
	resolver := m.secrets
	m.mu.RUnlock()
	if ok {
		return adapter, nil
	}

	p, ok := m.configs.Get(tag)
	if !ok {
		if _, known := config.DefaultType[tag]; !known {
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, tag)
		}
		p = m.configs.Init(tag)
	}

	if resolver != nil && strings.Contains(p.APIKey, "${secret:") {
		key, err := resolver.Resolve(context.Background(), p.APIKey)
		if err != nil {
			return nil, &providers.ConfigError{Provider: tag, Field: "api_key", Message: err.Error()}
		}
		p.APIKey = key
	}

	adapter, err := New(p, m.cache)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have won the race; keep the first adapter.
	if existing, ok := m.adapters[tag]; ok {
		return existing, nil
	}
	m.adapters[tag] = adapter

	m.logger.Info("adapter built",
		"provider", tag,
		"type", p.Type,
		"total_adapters", len(m.adapters),
	)
	return adapter, nil
}

// UseSecrets sets the resolver for API key references and drops adapters
// built without it.
func (m *Manager) UseSecrets(r SecretResolver) {
	m.mu.Lock()
	m.secrets = r
	m.mu.Unlock()
	m.Invalidate()
}

// Default returns the adapter of the configured default provider.
func (m *Manager) Default() (providers.Adapter, error) {
	return m.Get(m.configs.Config().DefaultProvider)
}

// Invalidate drops every built adapter. The next Get rebuilds from the
// current configuration.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.adapters) == 0 {
		return
	}
	m.logger.Debug("dropping adapters after configuration change", "count", len(m.adapters))
	clear(m.adapters)
}

// Built returns the tags whose adapters are currently built, sorted.
func (m *Manager) Built() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := make([]string, 0, len(m.adapters))
	for tag := range m.adapters {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
