package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error, including worker faults.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result mismatch between worker counts.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a configuration error, such as an invalid flag or a
// worker count that does not evenly divide the sequence length. It is always
// detected before any worker is spawned.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// WorkerFault reports an unexpected fault raised while a worker scanned its
// segment, such as a panic inside an equality function. A fault makes the
// whole search fail: reporting "not found" instead would be a false negative.
type WorkerFault struct {
	// Segment is the index of the segment owned by the faulting worker.
	Segment int
	// Index is the sequence position being examined when the fault occurred.
	Index int
	// Cause is the underlying error or recovered panic value.
	Cause error
}

// Error returns a message identifying the faulting segment and position.
func (e WorkerFault) Error() string {
	return fmt.Sprintf("worker for segment %d faulted at index %d: %v", e.Segment, e.Index, e.Cause)
}

// Unwrap returns the underlying cause.
func (e WorkerFault) Unwrap() error { return e.Cause }

// InterruptedError reports that the coordinator's wait for its workers was
// interrupted by the caller's context. The search result is discarded; the
// workers have nevertheless been joined.
type InterruptedError struct {
	// Cause is the context error (context.Canceled or context.DeadlineExceeded).
	Cause error
}

// Error returns the interruption message.
func (e InterruptedError) Error() string {
	return fmt.Sprintf("search interrupted while waiting for workers: %v", e.Cause)
}

// Unwrap returns the context error.
func (e InterruptedError) Unwrap() error { return e.Cause }

// TimeoutError reports that an operation ran past the limit it was given.
// Cause is usually an InterruptedError wrapping context.DeadlineExceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
	Cause error
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// Unwrap returns the underlying cause.
func (e TimeoutError) Unwrap() error { return e.Cause }

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsConfigError reports whether err is, or wraps, a ConfigError or ValidationError.
func IsConfigError(err error) bool {
	var ce ConfigError
	var ve ValidationError
	return errors.As(err, &ce) || errors.As(err, &ve)
}

// ExitCodeFor maps an error returned by a search to a process exit code.
func ExitCodeFor(err error) int {
	var te TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case IsConfigError(err):
		return ExitErrorConfig
	case errors.As(err, &te), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	}
	return ExitErrorGeneric
}
