package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for StreakState
var (
	ErrEmptyStreakUserID   = errors.New("streak state user ID cannot be empty")
	ErrNegativeStreak      = errors.New("streak counts must be greater than or equal to 0")
	ErrLongestBelowCurrent = errors.New("longest streak cannot be below current streak")
	ErrEmptyLastActivity   = errors.New("streak state last activity date cannot be empty")
)

// StreakState tracks a user's consecutive-day practice streak.
// There is exactly one row per user. CurrentStreak counts consecutive
// calendar days (in the reference time zone) ending at LastActivityDate on
// which at least one qualifying activity occurred.
type StreakState struct {
	UserID           uuid.UUID `json:"user_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate Date      `json:"last_activity_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewStreakState creates the streak state for a user's first qualifying
// activity: a one-day streak ending today.
func NewStreakState(userID uuid.UUID, today Date, now time.Time) (*StreakState, error) {
	state := &StreakState{
		UserID:           userID,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastActivityDate: today,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// EmptyStreakState returns the zero-valued streak for a user who has never
// practiced. It is a read-model convenience and is never persisted.
func EmptyStreakState(userID uuid.UUID) *StreakState {
	return &StreakState{UserID: userID}
}

// Validate checks if the StreakState has valid data.
// Returns an error if any field fails validation.
func (s *StreakState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStreakUserID
	}

	if s.CurrentStreak < 0 || s.LongestStreak < 0 {
		return ErrNegativeStreak
	}

	if s.LongestStreak < s.CurrentStreak {
		return ErrLongestBelowCurrent
	}

	if s.LastActivityDate.IsZero() {
		return ErrEmptyLastActivity
	}

	return nil
}
