package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// SessionFilter narrows FindByUser queries. Zero value means "all sessions
// for the user". CompletedFrom/CompletedTo bound CompletedAt as a half-open
// interval [CompletedFrom, CompletedTo).
type SessionFilter struct {
	CompletedOnly bool
	ContentType   *domain.ContentType
	CompletedFrom *time.Time
	CompletedTo   *time.Time
}

// LearningSessionStore defines the interface for learning session persistence.
type LearningSessionStore interface {
	// Create saves a new open session.
	// It handles domain validation internally.
	// Returns validation errors from the domain LearningSession if data is invalid.
	Create(ctx context.Context, session *domain.LearningSession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningSession, error)

	// Close marks a session completed with the given timestamp and duration,
	// then returns the stored row. The write is conditional on the session
	// still being open, so concurrent closes are safe: exactly one call wins
	// and every call reads back the same closed row with the winner's
	// duration. Returns ErrSessionNotFound if the session does not exist.
	Close(
		ctx context.Context,
		id uuid.UUID,
		completedAt time.Time,
		durationSeconds int,
	) (*domain.LearningSession, error)

	// FindByUser retrieves the user's sessions matching the filter,
	// ordered by StartedAt descending.
	// Returns an empty slice if no sessions match.
	FindByUser(
		ctx context.Context,
		userID uuid.UUID,
		filter SessionFilter,
	) ([]*domain.LearningSession, error)
}
