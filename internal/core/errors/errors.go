// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Ledger errors.
var (
	// ErrWriteConflict indicates a transactional prediction write raced
	// another writer and should be retried with fresh state.
	ErrWriteConflict = errors.New("concurrent write conflict")

	// ErrRunNotFound indicates a workflow run id does not exist.
	ErrRunNotFound = errors.New("workflow run not found")
)

// External service errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedGrouping indicates the grouping service returned output
	// that failed structural validation.
	ErrMalformedGrouping = errors.New("malformed grouping response")
)

// Validation errors.
var (
	// ErrInvalidDate indicates a date string is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
