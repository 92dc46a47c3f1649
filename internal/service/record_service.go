package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// AppendParams carries the arguments for RecordService.Append.
// SessionID is nil when the exercise is running without a session (e.g. the
// session open failed and the flow degraded). IsCorrect is nil for content
// without a binary correctness notion.
type AppendParams struct {
	UserID           uuid.UUID
	SessionID        *uuid.UUID
	ContentID        string
	IsCorrect        *bool
	TimeSpentSeconds int
	UserAnswer       json.RawMessage
}

// AppendScoredParams carries the arguments for RecordService.AppendScored.
// Feedback is the verbatim payload from the AI feedback service; the record's
// correctness is derived from its overall score.
type AppendScoredParams struct {
	UserID           uuid.UUID
	SessionID        *uuid.UUID
	ContentID        string
	TimeSpentSeconds int
	UserAnswer       json.RawMessage
	Feedback         json.RawMessage
}

// RecordService appends immutable learning records. Appending has no side
// effects beyond the insert: streak updates and aggregation are separate,
// explicit calls, so a caller can log answers from a context (e.g. an offline
// queue) that is not ready to update streaks yet.
type RecordService interface {
	// Append inserts one record for an answered item. No uniqueness is
	// enforced: answering the same content item again produces another
	// record. A negative TimeSpentSeconds fails with ErrInvalidInput and
	// nothing is stored.
	Append(ctx context.Context, params AppendParams) (*domain.LearningRecord, error)

	// AppendScored inserts one record for an AI-scored answer
	// (speaking/writing). IsCorrect derives from the payload's overall
	// score; the payload itself is stored verbatim.
	AppendScored(ctx context.Context, params AppendScoredParams) (*domain.LearningRecord, error)

	// Get retrieves a single record by ID, e.g. for reviewing the stored
	// feedback payload of a scored answer.
	Get(ctx context.Context, recordID uuid.UUID) (*domain.LearningRecord, error)
}

// recordServiceImpl implements the RecordService interface
type recordServiceImpl struct {
	records store.LearningRecordStore
	clock   Clock
	logger  *slog.Logger
}

// NewRecordService creates a new RecordService.
func NewRecordService(
	records store.LearningRecordStore,
	clock Clock,
	logger *slog.Logger,
) RecordService {
	if records == nil {
		panic("records store cannot be nil")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &recordServiceImpl{
		records: records,
		clock:   clock,
		logger:  logger.With(slog.String("component", "record_service")),
	}
}

// Ensure recordServiceImpl implements RecordService
var _ RecordService = (*recordServiceImpl)(nil)

// Append implements RecordService.Append.
func (s *recordServiceImpl) Append(ctx context.Context, params AppendParams) (*domain.LearningRecord, error) {
	return s.append(ctx, params, nil)
}

// AppendScored implements RecordService.AppendScored.
func (s *recordServiceImpl) AppendScored(
	ctx context.Context,
	params AppendScoredParams,
) (*domain.LearningRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	passing, err := domain.IsPassingFeedback(params.Feedback)
	if err != nil {
		log.Warn("rejected scored record with unusable feedback",
			slog.String("error", err.Error()),
			slog.String("user_id", params.UserID.String()),
			slog.String("content_id", params.ContentID))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.append(ctx, AppendParams{
		UserID:           params.UserID,
		SessionID:        params.SessionID,
		ContentID:        params.ContentID,
		IsCorrect:        &passing,
		TimeSpentSeconds: params.TimeSpentSeconds,
		UserAnswer:       params.UserAnswer,
	}, params.Feedback)
}

// Get implements RecordService.Get.
func (s *recordServiceImpl) Get(ctx context.Context, recordID uuid.UUID) (*domain.LearningRecord, error) {
	if recordID == uuid.Nil {
		return nil, fmt.Errorf("%w: record ID cannot be empty", ErrInvalidInput)
	}

	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, mapStoreError("get_record", err)
	}

	return record, nil
}

func (s *recordServiceImpl) append(
	ctx context.Context,
	params AppendParams,
	feedback json.RawMessage,
) (*domain.LearningRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewLearningRecord(
		params.UserID,
		params.SessionID,
		params.ContentID,
		params.IsCorrect,
		params.TimeSpentSeconds,
		params.UserAnswer,
		feedback,
		s.clock.Now(),
	)
	if err != nil {
		log.Warn("invalid record parameters",
			slog.String("error", err.Error()),
			slog.String("user_id", params.UserID.String()),
			slog.String("content_id", params.ContentID))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.records.Create(ctx, record); err != nil {
		log.Error("failed to append record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()),
			slog.String("user_id", params.UserID.String()))
		return nil, mapStoreError("append_record", err)
	}

	log.Debug("record appended",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", params.UserID.String()),
		slog.String("content_id", params.ContentID))
	return record, nil
}
