package streak

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) domain.Date {
	return domain.Date{Year: year, Month: month, Day: day}
}

func TestBegin(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()
	today := date(2025, time.June, 10)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	state, err := service.Begin(uuid.New(), today, now)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 1, state.LongestStreak)
	assert.Equal(t, today, state.LastActivityDate)

	_, err = service.Begin(uuid.Nil, today, now)
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestAdvance(t *testing.T) {
	t.Parallel() // Enable parallel execution
	today := date(2025, time.June, 10)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		lastActivity domain.Date
		current      int
		longest      int
		wantCurrent  int
		wantLongest  int
		wantLastDate domain.Date
		wantErr      error
	}{
		{
			name:         "same day is a no-op",
			lastActivity: today,
			current:      4,
			longest:      6,
			wantCurrent:  4,
			wantLongest:  6,
			wantLastDate: today,
		},
		{
			name:         "consecutive day extends the streak",
			lastActivity: today.AddDays(-1),
			current:      4,
			longest:      6,
			wantCurrent:  5,
			wantLongest:  6,
			wantLastDate: today,
		},
		{
			name:         "extension can overtake the record",
			lastActivity: today.AddDays(-1),
			current:      6,
			longest:      6,
			wantCurrent:  7,
			wantLongest:  7,
			wantLastDate: today,
		},
		{
			name:         "one missed day resets to one",
			lastActivity: today.AddDays(-2),
			current:      4,
			longest:      6,
			wantCurrent:  1,
			wantLongest:  6,
			wantLastDate: today,
		},
		{
			name:         "long gap resets to one and keeps the record",
			lastActivity: today.AddDays(-30),
			current:      10,
			longest:      12,
			wantCurrent:  1,
			wantLongest:  12,
			wantLastDate: today,
		},
		{
			name:         "gap across a month boundary resets",
			lastActivity: date(2025, time.May, 31),
			current:      4,
			longest:      6,
			wantCurrent:  1,
			wantLongest:  6,
			wantLastDate: today,
		},
		{
			name:         "future last activity is refused",
			lastActivity: today.AddDays(1),
			current:      4,
			longest:      6,
			wantErr:      ErrFutureActivityDate,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			service := NewService()
			state := &domain.StreakState{
				UserID:           uuid.New(),
				CurrentStreak:    tc.current,
				LongestStreak:    tc.longest,
				LastActivityDate: tc.lastActivity,
			}

			next, err := service.Advance(state, today, now)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantCurrent, next.CurrentStreak)
			assert.Equal(t, tc.wantLongest, next.LongestStreak)
			assert.Equal(t, tc.wantLastDate, next.LastActivityDate)

			// Input state is never mutated
			assert.Equal(t, tc.current, state.CurrentStreak)
			assert.Equal(t, tc.lastActivity, state.LastActivityDate)
		})
	}
}

func TestAdvanceConsecutiveAcrossMonthBoundary(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()
	now := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	state := &domain.StreakState{
		UserID:           uuid.New(),
		CurrentStreak:    3,
		LongestStreak:    3,
		LastActivityDate: date(2025, time.June, 30),
	}

	next, err := service.Advance(state, date(2025, time.July, 1), now)
	require.NoError(t, err)
	assert.Equal(t, 4, next.CurrentStreak)
}

func TestAdvanceIdempotentOverRepeatedTouches(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()
	today := date(2025, time.June, 10)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	state, err := service.Begin(uuid.New(), today, now)
	require.NoError(t, err)

	// Repeated same-day touches always land on the same state.
	for i := 0; i < 3; i++ {
		next, err := service.Advance(state, today, now)
		require.NoError(t, err)
		assert.Equal(t, state.CurrentStreak, next.CurrentStreak)
		assert.Equal(t, state.LongestStreak, next.LongestStreak)
		assert.Equal(t, state.LastActivityDate, next.LastActivityDate)
		state = next
	}
}

func TestAdvanceNilAndInvalidState(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()
	today := date(2025, time.June, 10)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	_, err := service.Advance(nil, today, now)
	assert.ErrorIs(t, err, ErrNilState)

	invalid := &domain.StreakState{
		UserID:           uuid.New(),
		CurrentStreak:    5,
		LongestStreak:    2,
		LastActivityDate: today,
	}
	_, err = service.Advance(invalid, today, now)
	assert.ErrorIs(t, err, domain.ErrLongestBelowCurrent)
}
