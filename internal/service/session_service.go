package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// SessionService manages the learning session lifecycle: one open per
// exercise start, one close per exercise end.
type SessionService interface {
	// Start creates a new open session for the user. On ErrStoreUnavailable
	// the caller should proceed without a session and log records with a nil
	// session ID; tracking is best-effort relative to the exercise itself.
	Start(
		ctx context.Context,
		userID uuid.UUID,
		sessionType domain.SessionType,
		contentType domain.ContentType,
	) (*domain.LearningSession, error)

	// Close completes the session with the given duration. Closing an
	// already-closed session is a no-op that returns the stored state, so
	// retried network calls are harmless; the first successful close wins,
	// including its duration.
	Close(ctx context.Context, sessionID uuid.UUID, durationSeconds int) (*domain.LearningSession, error)

	// Get retrieves a session by ID.
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.LearningSession, error)
}

// sessionServiceImpl implements the SessionService interface
type sessionServiceImpl struct {
	sessions store.LearningSessionStore
	clock    Clock
	logger   *slog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions store.LearningSessionStore,
	clock Clock,
	logger *slog.Logger,
) SessionService {
	if sessions == nil {
		panic("sessions store cannot be nil")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		sessions: sessions,
		clock:    clock,
		logger:   logger.With(slog.String("component", "session_service")),
	}
}

// Ensure sessionServiceImpl implements SessionService
var _ SessionService = (*sessionServiceImpl)(nil)

// Start implements SessionService.Start.
func (s *sessionServiceImpl) Start(
	ctx context.Context,
	userID uuid.UUID,
	sessionType domain.SessionType,
	contentType domain.ContentType,
) (*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := domain.NewLearningSession(userID, sessionType, contentType, s.clock.Now())
	if err != nil {
		log.Warn("invalid session parameters",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to start session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapStoreError("start_session", err)
	}

	log.Debug("session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()))
	return session, nil
}

// Close implements SessionService.Close.
func (s *sessionServiceImpl) Close(
	ctx context.Context,
	sessionID uuid.UUID,
	durationSeconds int,
) (*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}
	if durationSeconds < 0 {
		log.Warn("rejected negative session duration",
			slog.String("session_id", sessionID.String()),
			slog.Int("duration_seconds", durationSeconds))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, domain.ErrInvalidDuration)
	}

	session, err := s.sessions.Close(ctx, sessionID, s.clock.Now(), durationSeconds)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDuration) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		log.Error("failed to close session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, mapStoreError("close_session", err)
	}

	log.Debug("session closed",
		slog.String("session_id", session.ID.String()),
		slog.Bool("is_completed", session.IsCompleted))
	return session, nil
}

// Get implements SessionService.Get.
func (s *sessionServiceImpl) Get(ctx context.Context, sessionID uuid.UUID) (*domain.LearningSession, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError("get_session", err)
	}

	return session, nil
}
