package secrets

import "context"

// Provider retrieves secrets from one backend.
type Provider interface {
	// GetSecret retrieves a secret by name.
	GetSecret(ctx context.Context, name string) (string, error)

	// ListSecrets returns the secret names available from this provider.
	// Values are never included.
	ListSecrets(ctx context.Context) ([]string, error)

	// Provider returns the provider name ("env", "file").
	Provider() string

	// Supports reports whether this provider may hold the named secret.
	Supports(name string) bool
}

// RefreshableProvider can drop its cached values so the next read goes back
// to the backend.
type RefreshableProvider interface {
	Provider

	Refresh(ctx context.Context) error
}
