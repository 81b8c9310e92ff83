package providers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrStreamConsumed is returned when a stream is iterated a second time.
	ErrStreamConsumed = errors.New("stream already consumed")

	// ErrStreamClosed is returned by Recv after the consumer closed the stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrStreamTruncated is the cause of a TransportError raised when the
	// connection ends before the provider signalled end-of-stream.
	ErrStreamTruncated = errors.New("stream ended before end-of-stream marker")
)

// ValidationError represents a request validation failure.
// This occurs when the request has invalid fields before sending to the provider.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// TransportError represents a network-level failure, including a stream that
// dropped before its end-of-stream marker.
type TransportError struct {
	// Provider is the name of the provider being called
	Provider string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %q transport error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ProviderError represents a non-success HTTP status returned by the provider.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code
	StatusCode int

	// Body is the raw response body
	Body string

	// RetryAfter is the provider's Retry-After hint (zero if absent).
	// The pipeline never retries; callers may use it.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// IsRetryable reports whether the same request may succeed later: rate
// limiting (429) and server-side failures (5xx).
func (e *ProviderError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DecodeError represents a response whose shape the adapter cannot interpret.
type DecodeError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// Raw is the raw payload that failed to decode
	Raw string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("response decode error: %v", e.Cause)
	}
	return fmt.Sprintf("provider %q response decode error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ConfigError represents a provider configuration error.
// This occurs when an adapter cannot be built from its configuration.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}
