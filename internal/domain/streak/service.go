// Package streak implements the daily-practice streak transition rules as a
// pure domain service. It owns no persistence; callers load the current
// state, ask the service for the next one, and store the result.
package streak

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// Common errors
var (
	ErrNilState           = errors.New("streak state cannot be nil")
	ErrEmptyUserID        = errors.New("user ID cannot be empty")
	ErrFutureActivityDate = errors.New("streak last activity date is in the future")
)

// Service defines the interface for streak transition operations
type Service interface {
	// Begin creates the streak state for a user's first qualifying activity
	Begin(userID uuid.UUID, today domain.Date, now time.Time) (*domain.StreakState, error)

	// Advance computes the streak state after a qualifying activity on today.
	// It returns a new instance and never mutates the input state.
	Advance(state *domain.StreakState, today domain.Date, now time.Time) (*domain.StreakState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct{}

// NewService creates the streak transition service.
func NewService() Service {
	return &defaultService{}
}

// Begin implements the Service interface for first-activity state creation
func (s *defaultService) Begin(
	userID uuid.UUID,
	today domain.Date,
	now time.Time,
) (*domain.StreakState, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	return begin(userID, today, now)
}

// Advance implements the Service interface for streak transitions
func (s *defaultService) Advance(
	state *domain.StreakState,
	today domain.Date,
	now time.Time,
) (*domain.StreakState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return advance(state, today, now)
}
