package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedClosedSession stores a completed session for the user.
func seedClosedSession(
	t *testing.T,
	sessions *fakeSessionStore,
	userID uuid.UUID,
	contentType domain.ContentType,
	completedAt time.Time,
	durationSeconds int,
) *domain.LearningSession {
	t.Helper()

	session, err := domain.NewLearningSession(
		userID,
		domain.SessionTypeStandard,
		contentType,
		completedAt.Add(-time.Duration(durationSeconds)*time.Second),
	)
	require.NoError(t, err)
	require.NoError(t, session.Close(completedAt, durationSeconds))
	require.NoError(t, sessions.Create(context.Background(), session))
	return session
}

// seedScoredRecord stores a record with a known correctness for the user.
func seedScoredRecord(
	t *testing.T,
	records *fakeRecordStore,
	userID uuid.UUID,
	sessionID *uuid.UUID,
	isCorrect bool,
) {
	t.Helper()

	record, err := domain.NewLearningRecord(
		userID, sessionID, "content-1", &isCorrect, 10, nil, nil, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, records.Create(context.Background(), record))
}

func TestStatsServiceSummary(t *testing.T) {
	t.Parallel() // Enable parallel execution
	sessions := newFakeSessionStore()
	records := newFakeRecordStore()
	clock := &fixedClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewStatsService(sessions, records, clock, time.UTC, nil)
	userID := uuid.New()

	seedClosedSession(t, sessions, userID, domain.ContentTypeVocabulary, clock.now.Add(-2*time.Hour), 3600)
	seedClosedSession(t, sessions, userID, domain.ContentTypeVocabulary, clock.now.Add(-time.Hour), 300)
	seedClosedSession(t, sessions, userID, domain.ContentTypeReading, clock.now.Add(-30*time.Minute), 90)

	// An open session contributes nothing.
	open, err := domain.NewLearningSession(userID, domain.SessionTypeQuick, domain.ContentTypeListening, clock.now)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(context.Background(), open))

	// 7 correct out of 10 scored; unscored records stay out of the math.
	for i := 0; i < 7; i++ {
		seedScoredRecord(t, records, userID, nil, true)
	}
	for i := 0; i < 3; i++ {
		seedScoredRecord(t, records, userID, nil, false)
	}
	unscored, err := domain.NewLearningRecord(userID, nil, "content-2", nil, 5, nil, nil, clock.now)
	require.NoError(t, err)
	require.NoError(t, records.Create(context.Background(), unscored))

	summary, err := svc.Summary(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 3990, summary.TotalSeconds)
	assert.Equal(t, 1, summary.TotalHours)
	assert.Equal(t, 6, summary.TotalMinutes)
	assert.Equal(t, 70, summary.Accuracy)
	assert.Equal(t, 10, summary.TotalRecords)
	assert.Equal(t, 7, summary.CorrectRecords)
	assert.Equal(t, 93, summary.EstimatedScore) // round(30 + 0.70*90)
	assert.Equal(t, 2, summary.PerContentTypeCounts[domain.ContentTypeVocabulary])
	assert.Equal(t, 1, summary.PerContentTypeCounts[domain.ContentTypeReading])
	assert.Zero(t, summary.PerContentTypeCounts[domain.ContentTypeListening])
}

func TestStatsServiceSummaryEmptyHistory(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc := NewStatsService(newFakeSessionStore(), newFakeRecordStore(), nil, time.UTC, nil)

	summary, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Zero(t, summary.TotalSeconds)
	assert.Zero(t, summary.Accuracy, "empty denominator reads as zero, not a division error")
	assert.Equal(t, 30, summary.EstimatedScore, "zero accuracy maps to the score floor")
}

func TestEstimatedScore(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		accuracy int
		want     int
	}{
		{accuracy: 0, want: 30},
		{accuracy: 50, want: 75},
		{accuracy: 70, want: 93},
		{accuracy: 100, want: 120},
		{accuracy: 150, want: 120}, // saturates, never exceeds the ceiling
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, EstimatedScore(tc.accuracy), "accuracy %d", tc.accuracy)
	}

	// Monotonic over the whole valid range
	previous := EstimatedScore(0)
	for accuracy := 1; accuracy <= 100; accuracy++ {
		current := EstimatedScore(accuracy)
		require.GreaterOrEqual(t, current, previous, "accuracy %d", accuracy)
		previous = current
	}
}

func TestStatsServiceTodaysPlan(t *testing.T) {
	t.Parallel() // Enable parallel execution
	sessions := newFakeSessionStore()
	clock := &fixedClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewStatsService(sessions, newFakeRecordStore(), clock, time.UTC, nil)
	userID := uuid.New()

	// Closed today: vocabulary. Closed yesterday: reading. Open today: listening.
	seedClosedSession(t, sessions, userID, domain.ContentTypeVocabulary, clock.now.Add(-time.Hour), 300)
	seedClosedSession(t, sessions, userID, domain.ContentTypeReading, clock.now.Add(-24*time.Hour), 300)
	open, err := domain.NewLearningSession(userID, domain.SessionTypeQuick, domain.ContentTypeListening, clock.now)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(context.Background(), open))

	plan, err := svc.TodaysPlan(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, plan, len(domain.AllContentTypes))

	completed := make(map[domain.ContentType]bool)
	for _, item := range plan {
		completed[item.ContentType] = item.Completed
	}
	assert.True(t, completed[domain.ContentTypeVocabulary])
	assert.False(t, completed[domain.ContentTypeReading], "yesterday's session does not count")
	assert.False(t, completed[domain.ContentTypeListening], "open sessions do not count")
	assert.False(t, completed[domain.ContentTypeSpeaking])
	assert.False(t, completed[domain.ContentTypeWriting])

	// Plan order is stable and matches the display order.
	for i, item := range plan {
		assert.Equal(t, domain.AllContentTypes[i], item.ContentType)
	}
}

func TestStatsServiceTodaysPlanDayBoundary(t *testing.T) {
	t.Parallel() // Enable parallel execution
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	sessions := newFakeSessionStore()
	// 23:30 UTC June 9 is 08:30 June 10 in Tokyo.
	clock := &fixedClock{now: time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)}
	svc := NewStatsService(sessions, newFakeRecordStore(), clock, tokyo, nil)
	userID := uuid.New()

	// Closed at 22:00 UTC June 9 == 07:00 June 10 Tokyo: counts today.
	seedClosedSession(t, sessions, userID, domain.ContentTypeWriting, clock.now.Add(-90*time.Minute), 600)
	// Closed at 14:00 UTC June 9 == 23:00 June 9 Tokyo: yesterday there.
	seedClosedSession(t, sessions, userID, domain.ContentTypeSpeaking, clock.now.Add(-(9*time.Hour+30*time.Minute)), 600)

	plan, err := svc.TodaysPlan(context.Background(), userID)
	require.NoError(t, err)

	completed := make(map[domain.ContentType]bool)
	for _, item := range plan {
		completed[item.ContentType] = item.Completed
	}
	assert.True(t, completed[domain.ContentTypeWriting])
	assert.False(t, completed[domain.ContentTypeSpeaking])
}

func TestStatsServiceAccuracyByContentType(t *testing.T) {
	t.Parallel() // Enable parallel execution
	sessions := newFakeSessionStore()
	records := newFakeRecordStore()
	clock := &fixedClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewStatsService(sessions, records, clock, time.UTC, nil)
	userID := uuid.New()

	reading := seedClosedSession(t, sessions, userID, domain.ContentTypeReading, clock.now.Add(-time.Hour), 300)
	vocab := seedClosedSession(t, sessions, userID, domain.ContentTypeVocabulary, clock.now.Add(-time.Hour), 300)

	seedScoredRecord(t, records, userID, &reading.ID, true)
	seedScoredRecord(t, records, userID, &reading.ID, true)
	seedScoredRecord(t, records, userID, &reading.ID, false)
	// Vocabulary records must not leak into the reading rollup.
	seedScoredRecord(t, records, userID, &vocab.ID, false)

	result, err := svc.AccuracyByContentType(context.Background(), userID, domain.ContentTypeReading)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypeReading, result.ContentType)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 67, result.Accuracy)

	// No sessions of the type at all reads as zeroes.
	empty, err := svc.AccuracyByContentType(context.Background(), userID, domain.ContentTypeListening)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Accuracy)

	_, err = svc.AccuracyByContentType(context.Background(), userID, domain.ContentType("grammar"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatsServiceStoreUnavailable(t *testing.T) {
	t.Parallel() // Enable parallel execution
	sessions := newFakeSessionStore()
	sessions.errFind = store.ErrUnavailable
	svc := NewStatsService(sessions, newFakeRecordStore(), nil, time.UTC, nil)

	_, err := svc.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.TodaysPlan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
