package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1 // a destination failed
	ExitErrorTimeout  = 2
	ExitErrorMismatch = 3 // --verify found a destination that differs
	ExitErrorConfig   = 4
	ExitErrorCanceled = 130 // SIGINT
)

// ConfigError is a bad flag, environment variable or file value. Nothing is
// written when one is returned.
type ConfigError struct {
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// GenerationError records the failure of a single destination while keeping
// the underlying cause (open failure, write failure, cancellation).
type GenerationError struct {
	// Destination is the name of the output that failed.
	Destination string
	// BytesWritten is the number of bytes the destination accepted before failing.
	BytesWritten int64
	// Cause is the underlying error.
	Cause error
}

// Error returns a message naming the destination and the cause.
func (e GenerationError) Error() string {
	return fmt.Sprintf("%s: %v (after %d bytes)", e.Destination, e.Cause, e.BytesWritten)
}

// Unwrap returns the cause.
func (e GenerationError) Unwrap() error { return e.Cause }

// TimeoutError reports an operation that ran past Limit.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError names the plan or config field that failed a check.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError prefixes err with a formatted message, keeping it in the chain.
// A nil err stays nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from cancellation or a deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps err to a process exit code. Context errors take
// precedence over the typed errors that wrap them.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return ExitErrorConfig
	}
	var valErr ValidationError
	if errors.As(err, &valErr) {
		return ExitErrorConfig
	}
	var toErr TimeoutError
	if errors.As(err, &toErr) {
		return ExitErrorTimeout
	}
	return ExitErrorGeneric
}
