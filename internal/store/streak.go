package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// StreakStore defines the interface for streak state persistence.
// Each user has at most one streak row; it is the only mutable per-user state
// in the system, so updates must go through GetForUpdate inside a
// transaction.
type StreakStore interface {
	// Get retrieves the streak state for a user.
	// Returns ErrStreakNotFound if the user has never had a qualifying activity.
	// NOTE: This method does NOT take a row lock, so it must not be used when
	// you plan to update the row and need concurrency protection.
	Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error)

	// GetForUpdate retrieves the streak state with a row-level lock using
	// SELECT FOR UPDATE. Use it within a transaction when the row will be
	// updated, so two concurrent touches serialize instead of both observing
	// the pre-update state.
	// Returns ErrStreakNotFound if the streak row does not exist.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error)

	// Create saves a user's first streak state.
	// Returns ErrStreakExists if a row for the user already exists.
	Create(ctx context.Context, state *domain.StreakState) error

	// Update modifies an existing streak state, identified by its UserID.
	// Returns ErrStreakNotFound if the streak row does not exist.
	Update(ctx context.Context, state *domain.StreakState) error

	// WithTx returns a new StreakStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) StreakStore
}
