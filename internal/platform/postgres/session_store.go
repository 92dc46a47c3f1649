package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// PostgresLearningSessionStore implements the store.LearningSessionStore
// interface using a PostgreSQL database as the storage backend.
type PostgresLearningSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearningSessionStore creates a new PostgreSQL implementation of
// the LearningSessionStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresLearningSessionStore(db store.DBTX, logger *slog.Logger) *PostgresLearningSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLearningSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "learning_session_store")),
	}
}

// Ensure PostgresLearningSessionStore implements store.LearningSessionStore interface
var _ store.LearningSessionStore = (*PostgresLearningSessionStore)(nil)

// Create implements store.LearningSessionStore.Create
// It saves a new open session to the database, handling domain validation.
func (s *PostgresLearningSessionStore) Create(ctx context.Context, session *domain.LearningSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	query := `
		INSERT INTO learning_sessions
			(id, user_id, content_type, session_type, started_at, completed_at, duration_seconds, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.ContentType,
		session.SessionType,
		session.StartedAt,
		session.CompletedAt,
		session.DurationSeconds,
		session.IsCompleted,
	)

	if err != nil {
		log.Error("failed to create learning session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return MapError(err)
	}

	log.Info("learning session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.String("content_type", string(session.ContentType)),
		slog.String("session_type", string(session.SessionType)))
	return nil
}

// GetByID implements store.LearningSessionStore.GetByID
// It retrieves a session by its unique ID.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresLearningSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, content_type, session_type, started_at, completed_at, duration_seconds, is_completed
		FROM learning_sessions
		WHERE id = $1
	`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("learning session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get learning session by ID",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	return session, nil
}

// Close implements store.LearningSessionStore.Close
// The UPDATE is conditional on the session still being open, so concurrent
// closes are safe: the statement is a no-op for every caller after the first,
// and all callers read back the winner's row.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresLearningSessionStore) Close(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
	durationSeconds int,
) (*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE learning_sessions
		SET completed_at = $2, duration_seconds = $3, is_completed = TRUE
		WHERE id = $1 AND is_completed = FALSE
	`

	_, err := s.db.ExecContext(ctx, query, id, completedAt.UTC(), durationSeconds)
	if err != nil {
		log.Error("failed to close learning session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	// Zero rows affected means either "already closed" or "no such session";
	// reading the row back distinguishes the two and supplies the stored
	// state for the idempotent case.
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info("learning session closed",
		slog.String("session_id", id.String()),
		slog.String("user_id", session.UserID.String()))
	return session, nil
}

// FindByUser implements store.LearningSessionStore.FindByUser
// It retrieves the user's sessions matching the filter, newest first.
// Returns an empty slice if no sessions match.
func (s *PostgresLearningSessionStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.SessionFilter,
) ([]*domain.LearningSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, content_type, session_type, started_at, completed_at, duration_seconds, is_completed
		FROM learning_sessions
		WHERE user_id = $1
	`
	args := []any{userID}

	if filter.CompletedOnly {
		query += " AND is_completed = TRUE"
	}
	if filter.ContentType != nil {
		args = append(args, *filter.ContentType)
		query += " AND content_type = $" + strconv.Itoa(len(args))
	}
	if filter.CompletedFrom != nil {
		args = append(args, filter.CompletedFrom.UTC())
		query += " AND completed_at >= $" + strconv.Itoa(len(args))
	}
	if filter.CompletedTo != nil {
		args = append(args, filter.CompletedTo.UTC())
		query += " AND completed_at < $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY started_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query learning sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sessions := []*domain.LearningSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan learning session row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("found learning sessions",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(sessions)))
	return sessions, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.LearningSession, error) {
	var session domain.LearningSession
	var contentType, sessionType string
	var completedAt sql.NullTime
	var durationSeconds sql.NullInt64

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&contentType,
		&sessionType,
		&session.StartedAt,
		&completedAt,
		&durationSeconds,
		&session.IsCompleted,
	)
	if err != nil {
		return nil, err
	}

	session.ContentType = domain.ContentType(contentType)
	session.SessionType = domain.SessionType(sessionType)
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		session.CompletedAt = &t
	}
	if durationSeconds.Valid {
		d := int(durationSeconds.Int64)
		session.DurationSeconds = &d
	}

	return &session, nil
}
