package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// PostgresLearningRecordStore implements the store.LearningRecordStore
// interface using a PostgreSQL database as the storage backend.
type PostgresLearningRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearningRecordStore creates a new PostgreSQL implementation of
// the LearningRecordStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresLearningRecordStore(db store.DBTX, logger *slog.Logger) *PostgresLearningRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLearningRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "learning_record_store")),
	}
}

// Ensure PostgresLearningRecordStore implements store.LearningRecordStore interface
var _ store.LearningRecordStore = (*PostgresLearningRecordStore)(nil)

// Create implements store.LearningRecordStore.Create
// It saves a new record to the database, handling domain validation.
// Records are append-only; there is no corresponding update statement
// anywhere in this package.
func (s *PostgresLearningRecordStore) Create(ctx context.Context, record *domain.LearningRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	query := `
		INSERT INTO learning_records
			(id, user_id, session_id, content_id, is_correct, time_spent_seconds, user_answer, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.SessionID,
		record.ContentID,
		record.IsCorrect,
		record.TimeSpentSeconds,
		nullableJSON(record.UserAnswer),
		nullableJSON(record.Feedback),
		record.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create learning record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()),
			slog.String("user_id", record.UserID.String()))
		return MapError(err)
	}

	log.Info("learning record created",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", record.UserID.String()),
		slog.String("content_id", record.ContentID))
	return nil
}

// GetByID implements store.LearningRecordStore.GetByID
// Returns store.ErrRecordNotFound if the record does not exist.
func (s *PostgresLearningRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, session_id, content_id, is_correct, time_spent_seconds, user_answer, feedback, created_at
		FROM learning_records
		WHERE id = $1
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("learning record not found", slog.String("record_id", id.String()))
			return nil, store.ErrRecordNotFound
		}
		log.Error("failed to get learning record by ID",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return nil, MapError(err)
	}

	return record, nil
}

// FindByUser implements store.LearningRecordStore.FindByUser
// It retrieves the user's records matching the filter, newest first.
// Returns an empty slice if no records match.
func (s *PostgresLearningRecordStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.RecordFilter,
) ([]*domain.LearningRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, session_id, content_id, is_correct, time_spent_seconds, user_answer, feedback, created_at
		FROM learning_records
		WHERE user_id = $1
	`
	args := []any{userID}

	if filter.ScoredOnly {
		query += " AND is_correct IS NOT NULL"
	}
	if len(filter.SessionIDs) > 0 {
		placeholders := ""
		for i, sessionID := range filter.SessionIDs {
			args = append(args, sessionID)
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "$" + strconv.Itoa(len(args))
		}
		query += " AND session_id IN (" + placeholders + ")"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query learning records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := []*domain.LearningRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			log.Error("failed to scan learning record row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("found learning records",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

func scanRecord(row rowScanner) (*domain.LearningRecord, error) {
	var record domain.LearningRecord
	var sessionID uuid.NullUUID
	var isCorrect sql.NullBool
	var userAnswer, feedback []byte

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&sessionID,
		&record.ContentID,
		&isCorrect,
		&record.TimeSpentSeconds,
		&userAnswer,
		&feedback,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		id := sessionID.UUID
		record.SessionID = &id
	}
	if isCorrect.Valid {
		correct := isCorrect.Bool
		record.IsCorrect = &correct
	}
	record.UserAnswer = userAnswer
	record.Feedback = feedback

	return &record, nil
}

// nullableJSON converts an empty JSON payload to NULL so the jsonb columns
// never hold empty strings.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
