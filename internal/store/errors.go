package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrSessionNotFound, ErrStreakNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second streak row for the same user).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUnavailable is returned when the underlying store cannot be reached
	// or a statement fails for transient I/O reasons. Callers own the retry
	// decision; the store never retries internally.
	ErrUnavailable = errors.New("store unavailable")

	// Entity-specific "not found" errors

	// ErrSessionNotFound indicates that the requested learning session does not exist in the store.
	ErrSessionNotFound = fmt.Errorf("%w: learning session", ErrNotFound)

	// ErrRecordNotFound indicates that the requested learning record does not exist in the store.
	ErrRecordNotFound = fmt.Errorf("%w: learning record", ErrNotFound)

	// ErrStreakNotFound indicates that the requested streak state does not exist in the store.
	ErrStreakNotFound = fmt.Errorf("%w: streak state", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrStreakExists indicates that a streak row for the given user already exists.
	// This surfaces when two first-ever touches race on the unique user_id index.
	ErrStreakExists = fmt.Errorf("%w: streak state", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailableError checks if the error indicates the store could not be
// reached or a statement failed for transient reasons.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "learning_session", "streak_state")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
