package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/domain/streak"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// StreakService maintains the per-user daily practice streak.
type StreakService interface {
	// Touch registers a qualifying activity for the user on "today" as
	// computed from the injected clock in the reference time zone. Touching
	// more than once per calendar day is a no-op; a stored last-activity
	// date in the future fails with ErrInvalidState rather than guessing.
	Touch(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error)

	// Get retrieves the user's streak state. A user who has never practiced
	// reads as the zero-valued state rather than an error.
	Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error)
}

// streakServiceImpl implements the StreakService interface
type streakServiceImpl struct {
	transactor  store.Transactor
	streaks     store.StreakStore
	transitions streak.Service
	clock       Clock
	location    *time.Location
	logger      *slog.Logger
}

// NewStreakService creates a new StreakService. The location is the single
// reference time zone in which "today" is computed for every caller; it is
// configuration, never derived from the request.
func NewStreakService(
	transactor store.Transactor,
	streaks store.StreakStore,
	transitions streak.Service,
	clock Clock,
	location *time.Location,
	logger *slog.Logger,
) StreakService {
	if transactor == nil {
		panic("transactor cannot be nil")
	}
	if streaks == nil {
		panic("streaks store cannot be nil")
	}
	if transitions == nil {
		transitions = streak.NewService()
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &streakServiceImpl{
		transactor:  transactor,
		streaks:     streaks,
		transitions: transitions,
		clock:       clock,
		location:    location,
		logger:      logger.With(slog.String("component", "streak_service")),
	}
}

// Ensure streakServiceImpl implements StreakService
var _ StreakService = (*streakServiceImpl)(nil)

// Touch implements StreakService.Touch.
//
// The read-modify-write runs inside a transaction with a row-level lock
// (GetForUpdate), so two near-simultaneous touches for the same user
// serialize: the second transaction observes the first one's write and lands
// on the same-day no-op path instead of double-counting the day.
func (s *streakServiceImpl) Touch(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	now := s.clock.Now()
	today := domain.DateOf(now, s.location)

	var result *domain.StreakState
	err := s.transactor.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStreaks := s.streaks.WithTx(tx)

		state, err := txStreaks.GetForUpdate(ctx, userID)
		if err != nil {
			if !errors.Is(err, store.ErrStreakNotFound) {
				return err
			}
			// First qualifying activity ever for this user.
			created, err := s.createFirstStreak(ctx, txStreaks, userID, today, now)
			if err != nil {
				return err
			}
			result = created
			return nil
		}

		next, err := s.transitions.Advance(state, today, now)
		if err != nil {
			return err
		}

		// Same-day touches leave the row untouched; writing it back anyway
		// would only churn updated_at.
		if state.LastActivityDate == today {
			result = next
			return nil
		}

		if err := txStreaks.Update(ctx, next); err != nil {
			return err
		}
		result = next
		return nil
	})

	if err != nil {
		if errors.Is(err, streak.ErrFutureActivityDate) {
			log.Error("streak last activity date is ahead of today",
				slog.String("user_id", userID.String()),
				slog.String("today", today.String()))
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		log.Error("failed to touch streak",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapStoreError("touch_streak", err)
	}

	log.Debug("streak touched",
		slog.String("user_id", userID.String()),
		slog.Int("current_streak", result.CurrentStreak),
		slog.Int("longest_streak", result.LongestStreak))
	return result, nil
}

// createFirstStreak inserts the initial streak row. SELECT FOR UPDATE cannot
// lock a row that does not exist yet, so two first-ever touches may both
// reach the insert; the loser hits the unique user_id key and resolves by
// re-reading the winner's row under the lock.
func (s *streakServiceImpl) createFirstStreak(
	ctx context.Context,
	txStreaks store.StreakStore,
	userID uuid.UUID,
	today domain.Date,
	now time.Time,
) (*domain.StreakState, error) {
	state, err := s.transitions.Begin(userID, today, now)
	if err != nil {
		return nil, err
	}

	err = txStreaks.Create(ctx, state)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, store.ErrStreakExists) {
		return nil, err
	}

	existing, err := txStreaks.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := s.transitions.Advance(existing, today, now)
	if err != nil {
		return nil, err
	}

	if existing.LastActivityDate != today {
		if err := txStreaks.Update(ctx, next); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Get implements StreakService.Get.
func (s *streakServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	state, err := s.streaks.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrStreakNotFound) {
			return domain.EmptyStreakState(userID), nil
		}
		return nil, mapStoreError("get_streak", err)
	}

	return state, nil
}
