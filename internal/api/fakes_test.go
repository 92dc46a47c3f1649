package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/feedback"
	"github.com/phrazzld/lingo-api/internal/service"
	"github.com/stretchr/testify/require"
)

// fakeSessionService returns canned results; handlers under test never reach
// a real store.
type fakeSessionService struct {
	startResult *domain.LearningSession
	startErr    error
	closeResult *domain.LearningSession
	closeErr    error
	getResult   *domain.LearningSession
	getErr      error

	closeCalled bool
}

func (s *fakeSessionService) Start(
	ctx context.Context,
	userID uuid.UUID,
	sessionType domain.SessionType,
	contentType domain.ContentType,
) (*domain.LearningSession, error) {
	return s.startResult, s.startErr
}

func (s *fakeSessionService) Close(
	ctx context.Context,
	sessionID uuid.UUID,
	durationSeconds int,
) (*domain.LearningSession, error) {
	s.closeCalled = true
	return s.closeResult, s.closeErr
}

func (s *fakeSessionService) Get(ctx context.Context, sessionID uuid.UUID) (*domain.LearningSession, error) {
	return s.getResult, s.getErr
}

type fakeRecordService struct {
	appendResult *domain.LearningRecord
	appendErr    error
	scoredResult *domain.LearningRecord
	scoredErr    error
	getResult    *domain.LearningRecord
	getErr       error

	lastAppend *service.AppendParams
	lastScored *service.AppendScoredParams
}

func (s *fakeRecordService) Append(ctx context.Context, params service.AppendParams) (*domain.LearningRecord, error) {
	s.lastAppend = &params
	return s.appendResult, s.appendErr
}

func (s *fakeRecordService) AppendScored(
	ctx context.Context,
	params service.AppendScoredParams,
) (*domain.LearningRecord, error) {
	s.lastScored = &params
	return s.scoredResult, s.scoredErr
}

func (s *fakeRecordService) Get(ctx context.Context, recordID uuid.UUID) (*domain.LearningRecord, error) {
	return s.getResult, s.getErr
}

type fakeStreakService struct {
	touchResult *domain.StreakState
	touchErr    error
	getResult   *domain.StreakState
	getErr      error
}

func (s *fakeStreakService) Touch(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	return s.touchResult, s.touchErr
}

func (s *fakeStreakService) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	return s.getResult, s.getErr
}

type fakeStatsService struct {
	summary     *service.Summary
	summaryErr  error
	plan        []service.PlanItem
	planErr     error
	accuracy    *service.ContentTypeAccuracy
	accuracyErr error
}

func (s *fakeStatsService) Summary(ctx context.Context, userID uuid.UUID) (*service.Summary, error) {
	return s.summary, s.summaryErr
}

func (s *fakeStatsService) TodaysPlan(ctx context.Context, userID uuid.UUID) ([]service.PlanItem, error) {
	return s.plan, s.planErr
}

func (s *fakeStatsService) AccuracyByContentType(
	ctx context.Context,
	userID uuid.UUID,
	contentType domain.ContentType,
) (*service.ContentTypeAccuracy, error) {
	return s.accuracy, s.accuracyErr
}

// fakeScorer implements feedback.Scorer with a canned payload or error.
type fakeScorer struct {
	payload json.RawMessage
	err     error
}

func (s *fakeScorer) Score(ctx context.Context, submission feedback.Submission) (json.RawMessage, error) {
	return s.payload, s.err
}

// withUser injects the authenticated user into every request, standing in for
// the auth middleware.
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// newTestRouter mounts the handlers under the same paths the server uses.
func newTestRouter(
	userID uuid.UUID,
	sessions *SessionHandler,
	records *RecordHandler,
	streaks *StreakHandler,
	dashboard *DashboardHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(withUser(userID))
	if sessions != nil {
		r.Post("/api/sessions", sessions.StartSession)
		r.Post("/api/sessions/{id}/close", sessions.CloseSession)
		r.Get("/api/sessions/{id}", sessions.GetSession)
	}
	if records != nil {
		r.Post("/api/records", records.AppendRecord)
		r.Post("/api/records/scored", records.AppendScoredRecord)
		r.Get("/api/records/{id}", records.GetRecord)
	}
	if streaks != nil {
		r.Post("/api/streak/touch", streaks.TouchStreak)
		r.Get("/api/streak", streaks.GetStreak)
	}
	if dashboard != nil {
		r.Get("/api/dashboard/stats", dashboard.GetStats)
		r.Get("/api/dashboard/plan", dashboard.GetPlan)
		r.Get("/api/dashboard/accuracy", dashboard.GetAccuracy)
	}
	return r
}

// testSession builds a closed or open session owned by userID.
func testSession(t *testing.T, userID uuid.UUID, closed bool) *domain.LearningSession {
	t.Helper()

	session, err := domain.NewLearningSession(
		userID,
		domain.SessionTypeStandard,
		domain.ContentTypeVocabulary,
		time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	if closed {
		require.NoError(t, session.Close(session.StartedAt.Add(10*time.Minute), 600))
	}
	return session
}

// testRecord builds a stored record owned by userID.
func testRecord(t *testing.T, userID uuid.UUID, isCorrect *bool, feedbackPayload json.RawMessage) *domain.LearningRecord {
	t.Helper()

	record, err := domain.NewLearningRecord(
		userID, nil, "vocab-42", isCorrect, 17, nil, feedbackPayload,
		time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return record
}

// doJSON performs a request with an optional JSON body and decodes the
// response body into out when it is non-nil.
func doJSON(t *testing.T, handler http.Handler, method, path, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}
