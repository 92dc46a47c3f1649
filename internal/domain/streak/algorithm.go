package streak

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/domain"
)

// advance is the pure state-transition function behind Service.Advance.
//
// Given the streak state a user had before today's qualifying activity, it
// returns the state afterwards. The transition depends only on the calendar
// distance between LastActivityDate and today:
//
//   - same day: the state is returned unchanged (touching a streak twice in
//     one day must not inflate it)
//   - exactly one day: the streak continues, CurrentStreak grows by one and
//     LongestStreak follows if overtaken
//   - two or more days: the chain is broken, CurrentStreak restarts at 1 and
//     LongestStreak keeps the old record
//
// A LastActivityDate after today means the stored state was written with a
// clock ahead of ours. Guessing a correction here could silently shorten a
// legitimate streak, so the function refuses with ErrFutureActivityDate.
func advance(state *domain.StreakState, today domain.Date, now time.Time) (*domain.StreakState, error) {
	last := state.LastActivityDate

	if last.After(today) {
		return nil, ErrFutureActivityDate
	}

	if last == today {
		copied := *state
		return &copied, nil
	}

	newState := *state
	if last == today.AddDays(-1) {
		newState.CurrentStreak = state.CurrentStreak + 1
	} else {
		newState.CurrentStreak = 1
	}

	if newState.CurrentStreak > newState.LongestStreak {
		newState.LongestStreak = newState.CurrentStreak
	}

	newState.LastActivityDate = today
	newState.UpdatedAt = now.UTC()

	return &newState, nil
}

// begin creates the first streak state for a user: a one-day streak ending
// today.
func begin(userID uuid.UUID, today domain.Date, now time.Time) (*domain.StreakState, error) {
	return domain.NewStreakState(userID, today, now)
}
