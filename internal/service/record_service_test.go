package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordServiceAppend(t *testing.T) {
	t.Parallel() // Enable parallel execution
	records := newFakeRecordStore()
	clock := &fixedClock{now: time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)}
	svc := NewRecordService(records, clock, nil)
	userID := uuid.New()
	sessionID := uuid.New()
	isCorrect := true

	record, err := svc.Append(context.Background(), AppendParams{
		UserID:           userID,
		SessionID:        &sessionID,
		ContentID:        "vocab-42",
		IsCorrect:        &isCorrect,
		TimeSpentSeconds: 17,
		UserAnswer:       json.RawMessage(`{"selected":"b"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, userID, record.UserID)
	assert.True(t, record.CreatedAt.Equal(clock.now))
	require.NotNil(t, record.IsCorrect)
	assert.True(t, *record.IsCorrect)
	assert.Nil(t, record.Feedback)
}

func TestRecordServiceAppendWithoutSession(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc := NewRecordService(newFakeRecordStore(), nil, nil)

	record, err := svc.Append(context.Background(), AppendParams{
		UserID:           uuid.New(),
		ContentID:        "listening-7",
		TimeSpentSeconds: 0,
	})
	require.NoError(t, err)
	assert.Nil(t, record.SessionID)
	assert.Nil(t, record.IsCorrect)
}

func TestRecordServiceAppendNegativeTimeSpent(t *testing.T) {
	t.Parallel() // Enable parallel execution
	records := newFakeRecordStore()
	svc := NewRecordService(records, nil, nil)

	_, err := svc.Append(context.Background(), AppendParams{
		UserID:           uuid.New(),
		ContentID:        "vocab-42",
		TimeSpentSeconds: -1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, records.records, "nothing may be stored on rejection")
}

func TestRecordServiceAppendStoreUnavailable(t *testing.T) {
	t.Parallel() // Enable parallel execution
	records := newFakeRecordStore()
	records.errCreate = store.ErrUnavailable
	svc := NewRecordService(records, nil, nil)

	_, err := svc.Append(context.Background(), AppendParams{
		UserID:           uuid.New(),
		ContentID:        "vocab-42",
		TimeSpentSeconds: 5,
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRecordServiceGet(t *testing.T) {
	t.Parallel() // Enable parallel execution
	records := newFakeRecordStore()
	svc := NewRecordService(records, nil, nil)
	userID := uuid.New()

	stored, err := svc.Append(context.Background(), AppendParams{
		UserID:           userID,
		ContentID:        "vocab-42",
		TimeSpentSeconds: 5,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, userID, got.UserID)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordServiceGetStoreUnavailable(t *testing.T) {
	t.Parallel() // Enable parallel execution
	records := newFakeRecordStore()
	records.errGet = store.ErrUnavailable
	svc := NewRecordService(records, nil, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRecordServiceAppendScored(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		name        string
		overall     int
		wantCorrect bool
	}{
		{name: "overall at threshold is correct", overall: domain.PassingOverallScore, wantCorrect: true},
		{name: "overall above threshold is correct", overall: 9, wantCorrect: true},
		{name: "overall below threshold is incorrect", overall: 6, wantCorrect: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := NewRecordService(newFakeRecordStore(), nil, nil)
			payload := json.RawMessage(
				fmt.Sprintf(`{"scores":{"delivery":5,"overall":%d},"summary":"ok"}`, tc.overall),
			)

			record, err := svc.AppendScored(context.Background(), AppendScoredParams{
				UserID:           uuid.New(),
				ContentID:        "speaking-3",
				TimeSpentSeconds: 120,
				UserAnswer:       json.RawMessage(`"my transcript"`),
				Feedback:         payload,
			})
			require.NoError(t, err)
			require.NotNil(t, record.IsCorrect)
			assert.Equal(t, tc.wantCorrect, *record.IsCorrect)
			assert.JSONEq(t, string(payload), string(record.Feedback), "payload must be stored verbatim")
		})
	}
}

func TestRecordServiceAppendScoredMalformedFeedback(t *testing.T) {
	t.Parallel() // Enable parallel execution
	records := newFakeRecordStore()
	svc := NewRecordService(records, nil, nil)

	_, err := svc.AppendScored(context.Background(), AppendScoredParams{
		UserID:           uuid.New(),
		ContentID:        "writing-1",
		TimeSpentSeconds: 300,
		Feedback:         json.RawMessage(`{"scores":{}}`),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, records.records)
}
