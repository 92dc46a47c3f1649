// Package service provides the application-level progress tracking services:
// session lifecycle, record logging, streak maintenance, and statistics.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lingo-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent the failure taxonomy of the tracking core; callers
// check them with errors.Is().
//
// Error handling principles:
//  1. Service methods return sentinel errors for expected error conditions
//  2. Unexpected errors are wrapped in TrackerError
//  3. Callers use errors.Is/errors.As to check for specific error conditions
//  4. The API layer maps service errors to appropriate HTTP status codes
//  5. No service retries internally; retry policy belongs to the caller,
//     who knows whether the learner is still engaged
var (
	// ErrInvalidInput indicates malformed arguments (e.g. a negative
	// duration). Rejected synchronously, nothing is persisted.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates an operation referenced an entity that does not
	// exist (e.g. closing an unknown session).
	// API layer should map this to HTTP 404 Not Found.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates a transient persistence failure. The
	// operation may be retried by the caller; progress tracking is
	// best-effort relative to the learning experience, so callers should
	// degrade rather than block the learner.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidState indicates persisted state that the engine refuses to
	// act on (e.g. a streak last-activity date in the future). Never
	// auto-corrected.
	// API layer should map this to HTTP 409 Conflict.
	ErrInvalidState = errors.New("invalid state")
)

// TrackerError wraps errors from the tracking services with operation context.
type TrackerError struct {
	// Operation is the operation that failed (e.g. "start_session", "touch_streak")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TrackerError.
func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TrackerError) Unwrap() error {
	return e.Err
}

// mapStoreError translates store-level sentinels into the service taxonomy,
// wrapping anything unexpected in a TrackerError. Domain validation failures
// travel through as ErrInvalidInput.
func mapStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case store.IsNotFoundError(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case store.IsUnavailableError(err):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, store.ErrInvalidEntity):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &TrackerError{
		Operation: operation,
		Message:   "unexpected store failure",
		Err:       err,
	}
}
