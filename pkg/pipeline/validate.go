package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/conduit/pkg/providers"
)

// validate rejects requests that cannot produce a well-formed wire request.
func validate(adapter providers.Adapter, opts *providers.RequestOptions) error {
	if opts == nil {
		return &providers.ValidationError{Field: "options", Message: "request options are required"}
	}
	if adapter.ModelID(opts) == "" {
		return &providers.ValidationError{Field: "modelId", Message: "no model could be resolved"}
	}
	if opts.NumGenerations < 0 {
		return &providers.ValidationError{
			Field:   "num_generations",
			Message: fmt.Sprintf("must be at least 1, got %d", opts.NumGenerations),
		}
	}
	if opts.Prompt == "" && len(opts.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "a prompt or at least one message is required"}
	}
	for i, m := range opts.Messages {
		if !providers.ValidRole(m.Role) {
			return &providers.ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("invalid role %q (must be system, user or assistant)", m.Role),
			}
		}
	}
	return nil
}

// Error classes used for metrics and span attributes.
const (
	errTypeRateLimit  = "rate_limit"
	errTypeAuth       = "auth"
	errTypeClient     = "client_error"
	errTypeServer     = "server_error"
	errTypeNetwork    = "network"
	errTypeTruncated  = "truncated"
	errTypeDecode     = "decode"
	errTypeValidation = "validation"
	errTypeInternal   = "internal"
)

// classify maps a run error to its error class.
func classify(err error) string {
	var (
		perr *providers.ProviderError
		terr *providers.TransportError
		derr *providers.DecodeError
		verr *providers.ValidationError
	)
	switch {
	case errors.As(err, &perr):
		switch {
		case perr.StatusCode == http.StatusTooManyRequests:
			return errTypeRateLimit
		case perr.StatusCode == http.StatusUnauthorized, perr.StatusCode == http.StatusForbidden:
			return errTypeAuth
		case perr.StatusCode >= 500:
			return errTypeServer
		default:
			return errTypeClient
		}
	case errors.Is(err, providers.ErrStreamTruncated):
		return errTypeTruncated
	case errors.As(err, &terr):
		return errTypeNetwork
	case errors.As(err, &derr):
		return errTypeDecode
	case errors.As(err, &verr):
		return errTypeValidation
	default:
		return errTypeInternal
	}
}

// providerAttributable reports whether an error class is counted against
// the provider.
func providerAttributable(errType string) bool {
	switch errType {
	case errTypeValidation, errTypeInternal:
		return false
	}
	return true
}
