package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// RecordFilter narrows FindByUser queries. Zero value means "all records for
// the user".
type RecordFilter struct {
	// ScoredOnly keeps only records with a non-null IsCorrect. Records
	// without a correctness notion never enter accuracy math.
	ScoredOnly bool

	// SessionIDs keeps only records belonging to the given sessions.
	SessionIDs []uuid.UUID
}

// LearningRecordStore defines the interface for learning record persistence.
// Records are immutable facts: there is deliberately no update or delete.
type LearningRecordStore interface {
	// Create saves a new record. No uniqueness is enforced across calls; a
	// learner answering the same content item twice produces two records.
	// It handles domain validation internally.
	// Returns validation errors from the domain LearningRecord if data is invalid.
	Create(ctx context.Context, record *domain.LearningRecord) error

	// GetByID retrieves a record by its unique ID.
	// Returns ErrRecordNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningRecord, error)

	// FindByUser retrieves the user's records matching the filter,
	// ordered by CreatedAt descending.
	// Returns an empty slice if no records match.
	FindByUser(
		ctx context.Context,
		userID uuid.UUID,
		filter RecordFilter,
	) ([]*domain.LearningRecord, error)
}
