package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/store"
)

// Estimated-score constants: accuracy maps linearly onto the score band
// [ScoreFloor, ScoreCeiling] and saturates at the bounds.
const (
	scoreFloor   = 30
	scoreCeiling = 120
	scoreRange   = 90
)

// Summary is the dashboard rollup of a user's learning history.
type Summary struct {
	TotalSeconds         int                        `json:"total_seconds"`
	TotalHours           int                        `json:"total_hours"`
	TotalMinutes         int                        `json:"total_minutes"`
	Accuracy             int                        `json:"accuracy"`
	TotalRecords         int                        `json:"total_records"`
	CorrectRecords       int                        `json:"correct_records"`
	EstimatedScore       int                        `json:"estimated_score"`
	PerContentTypeCounts map[domain.ContentType]int `json:"per_content_type_counts"`
}

// PlanItem reports whether one content type has been practiced today.
type PlanItem struct {
	ContentType domain.ContentType `json:"content_type"`
	Completed   bool               `json:"completed"`
}

// ContentTypeAccuracy is the accuracy rollup for a single content type.
type ContentTypeAccuracy struct {
	ContentType domain.ContentType `json:"content_type"`
	Accuracy    int                `json:"accuracy"`
	Total       int                `json:"total"`
	Correct     int                `json:"correct"`
}

// StatsService computes read-side statistics over a user's sessions and
// records. It performs no writes; cross-entity aggregation happens here after
// separate queries, never in SQL joins.
type StatsService interface {
	// Summary computes the user's overall rollup: time spent in closed
	// sessions, accuracy over scored records, per-content-type session
	// counts, and the display-only estimated score.
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)

	// TodaysPlan reports, for each of the five content types, whether at
	// least one session of that type was closed today in the reference time
	// zone.
	TodaysPlan(ctx context.Context, userID uuid.UUID) ([]PlanItem, error)

	// AccuracyByContentType computes accuracy over the records belonging to
	// the user's sessions of one content type.
	AccuracyByContentType(
		ctx context.Context,
		userID uuid.UUID,
		contentType domain.ContentType,
	) (*ContentTypeAccuracy, error)
}

// statsServiceImpl implements the StatsService interface
type statsServiceImpl struct {
	sessions store.LearningSessionStore
	records  store.LearningRecordStore
	clock    Clock
	location *time.Location
	logger   *slog.Logger
}

// NewStatsService creates a new StatsService. The location is the reference
// time zone used to bound "today" and must match the streak engine's.
func NewStatsService(
	sessions store.LearningSessionStore,
	records store.LearningRecordStore,
	clock Clock,
	location *time.Location,
	logger *slog.Logger,
) StatsService {
	if sessions == nil {
		panic("sessions store cannot be nil")
	}
	if records == nil {
		panic("records store cannot be nil")
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

	return &statsServiceImpl{
		sessions: sessions,
		records:  records,
		clock:    clock,
		location: location,
		logger:   logger.With(slog.String("component", "stats_service")),
	}
}

// Ensure statsServiceImpl implements StatsService
var _ StatsService = (*statsServiceImpl)(nil)

// Summary implements StatsService.Summary.
func (s *statsServiceImpl) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	closed, err := s.sessions.FindByUser(ctx, userID, store.SessionFilter{CompletedOnly: true})
	if err != nil {
		return nil, mapStoreError("summarize_sessions", err)
	}

	totalSeconds := 0
	perContentType := make(map[domain.ContentType]int)
	for _, session := range closed {
		if session.DurationSeconds != nil {
			totalSeconds += *session.DurationSeconds
		}
		perContentType[session.ContentType]++
	}

	scored, err := s.records.FindByUser(ctx, userID, store.RecordFilter{ScoredOnly: true})
	if err != nil {
		return nil, mapStoreError("summarize_records", err)
	}

	correct := 0
	for _, record := range scored {
		if record.IsCorrect != nil && *record.IsCorrect {
			correct++
		}
	}

	accuracy := accuracyPercent(correct, len(scored))

	summary := &Summary{
		TotalSeconds:         totalSeconds,
		TotalHours:           totalSeconds / 3600,
		TotalMinutes:         (totalSeconds % 3600) / 60,
		Accuracy:             accuracy,
		TotalRecords:         len(scored),
		CorrectRecords:       correct,
		EstimatedScore:       EstimatedScore(accuracy),
		PerContentTypeCounts: perContentType,
	}

	log.Debug("summary computed",
		slog.String("user_id", userID.String()),
		slog.Int("total_seconds", totalSeconds),
		slog.Int("accuracy", accuracy))
	return summary, nil
}

// TodaysPlan implements StatsService.TodaysPlan.
func (s *statsServiceImpl) TodaysPlan(ctx context.Context, userID uuid.UUID) ([]PlanItem, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	// [start of today, start of tomorrow) in the reference time zone.
	today := domain.DateOf(s.clock.Now(), s.location)
	from := today.StartOfDay(s.location)
	to := today.AddDays(1).StartOfDay(s.location)

	closedToday, err := s.sessions.FindByUser(ctx, userID, store.SessionFilter{
		CompletedOnly: true,
		CompletedFrom: &from,
		CompletedTo:   &to,
	})
	if err != nil {
		return nil, mapStoreError("plan_sessions", err)
	}

	completedTypes := make(map[domain.ContentType]bool)
	for _, session := range closedToday {
		completedTypes[session.ContentType] = true
	}

	plan := make([]PlanItem, 0, len(domain.AllContentTypes))
	for _, contentType := range domain.AllContentTypes {
		plan = append(plan, PlanItem{
			ContentType: contentType,
			Completed:   completedTypes[contentType],
		})
	}

	return plan, nil
}

// AccuracyByContentType implements StatsService.AccuracyByContentType.
func (s *statsServiceImpl) AccuracyByContentType(
	ctx context.Context,
	userID uuid.UUID,
	contentType domain.ContentType,
) (*ContentTypeAccuracy, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}
	if !domain.IsValidContentType(contentType) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, domain.ErrInvalidContentType)
	}

	ct := contentType
	sessions, err := s.sessions.FindByUser(ctx, userID, store.SessionFilter{ContentType: &ct})
	if err != nil {
		return nil, mapStoreError("accuracy_sessions", err)
	}

	result := &ContentTypeAccuracy{ContentType: contentType}
	if len(sessions) == 0 {
		return result, nil
	}

	sessionIDs := make([]uuid.UUID, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	scored, err := s.records.FindByUser(ctx, userID, store.RecordFilter{
		ScoredOnly: true,
		SessionIDs: sessionIDs,
	})
	if err != nil {
		return nil, mapStoreError("accuracy_records", err)
	}

	for _, record := range scored {
		if record.IsCorrect != nil && *record.IsCorrect {
			result.Correct++
		}
	}
	result.Total = len(scored)
	result.Accuracy = accuracyPercent(result.Correct, result.Total)

	return result, nil
}

// accuracyPercent returns the rounded percentage of correct answers, or 0
// when nothing has been scored. Records without a correctness notion never
// reach this function; they are excluded from both sides of the ratio.
func accuracyPercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// EstimatedScore maps accuracy onto the display score band. It is a
// monotonic, deterministic function of accuracy alone and saturates at the
// band's bounds instead of overflowing.
func EstimatedScore(accuracy int) int {
	score := int(math.Round(scoreFloor + float64(accuracy)/100*scoreRange))
	if score < 0 {
		return 0
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}
