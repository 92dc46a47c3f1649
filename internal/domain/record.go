package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PassingOverallScore is the minimum overall rubric score (on the 0-9 scale
// used by the feedback service) at which an AI-scored answer counts as
// correct.
const PassingOverallScore = 7

// Common validation errors for LearningRecord
var (
	ErrEmptyRecordID       = errors.New("learning record ID cannot be empty")
	ErrEmptyRecordUserID   = errors.New("learning record user ID cannot be empty")
	ErrEmptyContentID      = errors.New("learning record content ID cannot be empty")
	ErrNegativeTimeSpent   = errors.New("time spent seconds must be greater than or equal to 0")
	ErrMalformedFeedback   = errors.New("feedback payload is malformed")
	ErrMissingOverallScore = errors.New("feedback payload has no overall score")
)

// LearningRecord is one immutable fact about a single answered item.
// A record may exist without a session (SessionID nil) when the exercise flow
// could not open one; that is an accepted degraded state, not an error.
// Records are never updated or deleted.
type LearningRecord struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	SessionID        *uuid.UUID      `json:"session_id,omitempty"`
	ContentID        string          `json:"content_id"`
	IsCorrect        *bool           `json:"is_correct,omitempty"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	UserAnswer       json.RawMessage `json:"user_answer,omitempty"`
	Feedback         json.RawMessage `json:"feedback,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewLearningRecord creates a new record for the given user and content item.
// Returns an error if validation fails; in particular a negative
// timeSpentSeconds is rejected rather than clamped.
func NewLearningRecord(
	userID uuid.UUID,
	sessionID *uuid.UUID,
	contentID string,
	isCorrect *bool,
	timeSpentSeconds int,
	userAnswer json.RawMessage,
	feedback json.RawMessage,
	createdAt time.Time,
) (*LearningRecord, error) {
	record := &LearningRecord{
		ID:               uuid.New(),
		UserID:           userID,
		SessionID:        sessionID,
		ContentID:        contentID,
		IsCorrect:        isCorrect,
		TimeSpentSeconds: timeSpentSeconds,
		UserAnswer:       userAnswer,
		Feedback:         feedback,
		CreatedAt:        createdAt.UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the LearningRecord has valid data.
// Returns an error if any field fails validation.
func (r *LearningRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRecordID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyRecordUserID
	}

	if r.ContentID == "" {
		return ErrEmptyContentID
	}

	if r.TimeSpentSeconds < 0 {
		return ErrNegativeTimeSpent
	}

	return nil
}

// feedbackEnvelope is the slice of the feedback payload the record logger
// actually understands. The rest of the payload is stored verbatim.
type feedbackEnvelope struct {
	Scores struct {
		Overall *int `json:"overall"`
	} `json:"scores"`
}

// OverallScore extracts the overall rubric score from a raw feedback payload.
// Returns ErrMalformedFeedback if the payload is not valid JSON and
// ErrMissingOverallScore if it carries no overall score.
func OverallScore(feedback json.RawMessage) (int, error) {
	if len(feedback) == 0 {
		return 0, ErrMissingOverallScore
	}

	var envelope feedbackEnvelope
	if err := json.Unmarshal(feedback, &envelope); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedFeedback, err)
	}

	if envelope.Scores.Overall == nil {
		return 0, ErrMissingOverallScore
	}

	return *envelope.Scores.Overall, nil
}

// IsPassingFeedback reports whether a raw feedback payload counts as a
// correct answer, i.e. its overall score meets PassingOverallScore.
func IsPassingFeedback(feedback json.RawMessage) (bool, error) {
	overall, err := OverallScore(feedback)
	if err != nil {
		return false, err
	}
	return overall >= PassingOverallScore, nil
}
