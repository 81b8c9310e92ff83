package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
//
// Example:
//   - Secret name: "openai-key"
//   - Env var name: "CONDUIT_SECRET_OPENAI_KEY" (with prefix "CONDUIT_SECRET_")
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment variable provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret reads the variable derived from name. An empty variable counts as
// missing.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envVar := p.envVar(name)
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("%w: %s (env var: %s)", ErrNotFound, name, envVar)
	}
	return value, nil
}

// ListSecrets returns the names of every variable carrying the prefix.
func (p *EnvProvider) ListSecrets(_ context.Context) ([]string, error) {
	var names []string
	for _, env := range os.Environ() {
		key, _, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, p.Prefix) {
			continue
		}
		names = append(names, p.secretName(key))
	}
	return names, nil
}

// Provider returns "env".
func (p *EnvProvider) Provider() string { return "env" }

// Supports always reports true so the environment acts as the fallback.
func (p *EnvProvider) Supports(string) bool { return true }

// envVar converts "openai-key" to "<prefix>OPENAI_KEY".
func (p *EnvProvider) envVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// secretName converts "<prefix>OPENAI_KEY" back to "openai-key".
func (p *EnvProvider) secretName(envVar string) string {
	name := strings.TrimPrefix(envVar, p.Prefix)
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}
