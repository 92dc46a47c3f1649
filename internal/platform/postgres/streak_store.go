package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// PostgresStreakStore implements the store.StreakStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStreakStore creates a new PostgreSQL implementation of the
// StreakStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStreakStore(db store.DBTX, logger *slog.Logger) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

// Ensure PostgresStreakStore implements store.StreakStore interface
var _ store.StreakStore = (*PostgresStreakStore)(nil)

// WithTx implements store.StreakStore.WithTx
// It returns a new store instance backed by the provided transaction.
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &PostgresStreakStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.StreakStore.Get
// Returns store.ErrStreakNotFound if the user has no streak row.
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	return s.get(ctx, userID, false)
}

// GetForUpdate implements store.StreakStore.GetForUpdate
// It takes a row-level lock with SELECT ... FOR UPDATE; use it inside a
// transaction when the row will be written, so concurrent touches for the
// same user serialize on the row instead of racing.
// Returns store.ErrStreakNotFound if the user has no streak row.
func (s *PostgresStreakStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	return s.get(ctx, userID, true)
}

func (s *PostgresStreakStore) get(ctx context.Context, userID uuid.UUID, forUpdate bool) (*domain.StreakState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var state domain.StreakState
	var lastActivity time.Time

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&state.UserID,
		&state.CurrentStreak,
		&state.LongestStreak,
		&lastActivity,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("streak state not found", slog.String("user_id", userID.String()))
			return nil, store.ErrStreakNotFound
		}
		log.Error("failed to get streak state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	// DATE columns come back as midnight timestamps; only the calendar day
	// is meaningful.
	state.LastActivityDate = domain.DateOf(lastActivity, time.UTC)

	return &state, nil
}

// Create implements store.StreakStore.Create
// It saves a user's first streak state, handling domain validation.
// Returns store.ErrStreakExists if a row for the user already exists, which
// happens when two first-ever touches race on the unique user_id key.
func (s *PostgresStreakStore) Create(ctx context.Context, state *domain.StreakState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("streak state validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return err
	}

	// ON CONFLICT DO NOTHING keeps a lost insert race from raising an error
	// and aborting the surrounding transaction; the caller re-reads the
	// winner's row instead.
	query := `
		INSERT INTO streaks (user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.CurrentStreak,
		state.LongestStreak,
		state.LastActivityDate.StartOfDay(time.UTC),
		state.CreatedAt,
		state.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create streak state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		log.Debug("streak row already exists",
			slog.String("user_id", state.UserID.String()))
		return store.ErrStreakExists
	}

	log.Info("streak state created",
		slog.String("user_id", state.UserID.String()),
		slog.String("last_activity_date", state.LastActivityDate.String()))
	return nil
}

// Update implements store.StreakStore.Update
// It modifies an existing streak state, identified by its UserID.
// Returns store.ErrStreakNotFound if the streak row does not exist.
func (s *PostgresStreakStore) Update(ctx context.Context, state *domain.StreakState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("streak state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return err
	}

	query := `
		UPDATE streaks
		SET current_streak = $2, longest_streak = $3, last_activity_date = $4, updated_at = $5
		WHERE user_id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.CurrentStreak,
		state.LongestStreak,
		state.LastActivityDate.StartOfDay(time.UTC),
		state.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to update streak state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "streak state"); err != nil {
		log.Debug("streak state not found for update",
			slog.String("user_id", state.UserID.String()))
		return store.ErrStreakNotFound
	}

	log.Info("streak state updated",
		slog.String("user_id", state.UserID.String()),
		slog.Int("current_streak", state.CurrentStreak),
		slog.Int("longest_streak", state.LongestStreak),
		slog.String("last_activity_date", state.LastActivityDate.String()))
	return nil
}
