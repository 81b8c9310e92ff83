package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"mercator-hq/conduit/pkg/config"
)

// ErrNotFound is returned when no provider holds a secret.
var ErrNotFound = errors.New("secret not found")

// refPattern matches ${secret:name}.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// IsReference reports whether s contains a ${secret:name} reference.
func IsReference(s string) bool {
	return refPattern.MatchString(s)
}

// Manager resolves secrets from its providers in order, first hit wins.
type Manager struct {
	providers []Provider
	cache     *cache
	closers   []func() error
	logger    *slog.Logger
}

// NewManager creates a manager over providers. Resolved values are reused
// for ttl (0 disables caching).
func NewManager(providers []Provider, ttl time.Duration) *Manager {
	return &Manager{
		providers: providers,
		cache:     newCache(ttl),
		logger:    slog.Default().With("component", "secrets"),
	}
}

// Open builds the manager described by cfg: the secrets directory when set,
// then the environment.
func Open(cfg config.SecretsConfig) (*Manager, error) {
	var providers []Provider
	var closers []func() error
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir, cfg.Watch)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
		closers = append(closers, fp.Close)
	}
	providers = append(providers, NewEnvProvider(cfg.EnvPrefix))

	m := NewManager(providers, cfg.CacheTTL)
	m.closers = closers
	return m, nil
}

// GetSecret returns the named secret from the first provider that has it.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.get(name); ok {
		return value, nil
	}

	var errs []error
	for _, p := range m.providers {
		if !p.Supports(name) {
			continue
		}
		value, err := p.GetSecret(ctx, name)
		if err != nil {
			m.logger.Debug("secret provider miss", "provider", p.Provider(), "name", redactName(name), "error", err)
			errs = append(errs, err)
			continue
		}
		m.cache.set(name, value)
		m.logger.Debug("secret resolved", "provider", p.Provider(), "name", redactName(name))
		return value, nil
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return "", fmt.Errorf("failed to get secret %q: %w", name, errors.Join(errs...))
}

// Resolve replaces every ${secret:name} in s with its value. Unresolvable
// references are reported together; s is returned unchanged in that case.
func (m *Manager) Resolve(ctx context.Context, s string) (string, error) {
	var errs []error
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := strings.TrimSpace(refPattern.FindStringSubmatch(ref)[1])
		value, err := m.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return value
	})
	if len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return out, nil
}

// Refresh drops cached values in the manager and every refreshable provider.
func (m *Manager) Refresh(ctx context.Context) error {
	var errs []error
	for _, p := range m.providers {
		if r, ok := p.(RefreshableProvider); ok {
			if err := r.Refresh(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Provider(), err))
			}
		}
	}
	m.cache.clear()
	return errors.Join(errs...)
}

// ListSecrets returns the sorted, de-duplicated secret names across all
// providers. Providers that fail to list are skipped.
func (m *Manager) ListSecrets(ctx context.Context) []string {
	var names []string
	for _, p := range m.providers {
		list, err := p.ListSecrets(ctx)
		if err != nil {
			m.logger.Warn("failed to list secrets", "provider", p.Provider(), "error", err)
			continue
		}
		names = append(names, list...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Close releases provider resources.
func (m *Manager) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// redactName keeps the first and last two characters of a secret name.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
