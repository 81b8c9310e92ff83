package cli

import (
	"errors"
	"fmt"

	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/providers"
)

// Exit codes returned by the conduit command.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitProvider = 3
	ExitNetwork  = 4
	ExitDecode   = 5
)

// UsageError represents an invalid flag or argument.
type UsageError struct {
	Field   string
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a new UsageError.
func NewUsageError(field, message string) *UsageError {
	return &UsageError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usage   *UsageError
		field   config.FieldError
		invalid config.ValidationError
		verr    *providers.ValidationError
		cerr    *providers.ConfigError
		perr    *providers.ProviderError
		terr    *providers.TransportError
		derr    *providers.DecodeError
	)
	switch {
	case errors.As(err, &usage), errors.As(err, &field), errors.As(err, &invalid),
		errors.As(err, &verr), errors.As(err, &cerr), errors.Is(err, config.ErrUnknownProvider):
		return ExitUsage
	case errors.As(err, &perr):
		return ExitProvider
	case errors.As(err, &terr):
		return ExitNetwork
	case errors.As(err, &derr):
		return ExitDecode
	default:
		return ExitFailure
	}
}
