package api

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/lingo-api/internal/domain"
)

// StartSessionRequest represents the request body for opening a session
type StartSessionRequest struct {
	SessionType string `json:"session_type" validate:"required,oneof=quick standard deep"`
	ContentType string `json:"content_type" validate:"required,oneof=vocabulary reading listening speaking writing"`
}

// CloseSessionRequest represents the request body for closing a session
type CloseSessionRequest struct {
	DurationSeconds *int `json:"duration_seconds" validate:"required,gte=0"`
}

// SessionResponse represents the response data for a learning session
type SessionResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ContentType     string     `json:"content_type"`
	SessionType     string     `json:"session_type"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	IsCompleted     bool       `json:"is_completed"`
}

// AppendRecordRequest represents the request body for logging one answered
// item. SessionID is optional: records logged while the session open failed
// arrive without one.
type AppendRecordRequest struct {
	SessionID        *string         `json:"session_id,omitempty" validate:"omitempty,uuid"`
	ContentID        string          `json:"content_id" validate:"required"`
	IsCorrect        *bool           `json:"is_correct,omitempty"`
	TimeSpentSeconds int             `json:"time_spent_seconds" validate:"gte=0"`
	UserAnswer       json.RawMessage `json:"user_answer,omitempty"`
}

// AppendScoredRecordRequest represents the request body for logging a
// speaking or writing answer that needs AI scoring. Prompt and Answer feed
// the scorer; Answer is also stored as the user answer.
type AppendScoredRecordRequest struct {
	SessionID        *string `json:"session_id,omitempty" validate:"omitempty,uuid"`
	ContentID        string  `json:"content_id" validate:"required"`
	ContentType      string  `json:"content_type" validate:"required,oneof=speaking writing"`
	TimeSpentSeconds int     `json:"time_spent_seconds" validate:"gte=0"`
	Prompt           string  `json:"prompt" validate:"required"`
	Answer           string  `json:"answer" validate:"required"`
}

// RecordResponse represents the response data for a learning record
type RecordResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	SessionID        *string         `json:"session_id,omitempty"`
	ContentID        string          `json:"content_id"`
	IsCorrect        *bool           `json:"is_correct,omitempty"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	Feedback         json.RawMessage `json:"feedback,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// StreakResponse represents the response data for a user's streak state
type StreakResponse struct {
	UserID           string `json:"user_id"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}

// sessionToDTOResponse converts a domain.LearningSession to a SessionResponse
func sessionToDTOResponse(session *domain.LearningSession) SessionResponse {
	return SessionResponse{
		ID:              session.ID.String(),
		UserID:          session.UserID.String(),
		ContentType:     string(session.ContentType),
		SessionType:     string(session.SessionType),
		StartedAt:       session.StartedAt,
		CompletedAt:     session.CompletedAt,
		DurationSeconds: session.DurationSeconds,
		IsCompleted:     session.IsCompleted,
	}
}

// recordToDTOResponse converts a domain.LearningRecord to a RecordResponse
func recordToDTOResponse(record *domain.LearningRecord) RecordResponse {
	response := RecordResponse{
		ID:               record.ID.String(),
		UserID:           record.UserID.String(),
		ContentID:        record.ContentID,
		IsCorrect:        record.IsCorrect,
		TimeSpentSeconds: record.TimeSpentSeconds,
		Feedback:         record.Feedback,
		CreatedAt:        record.CreatedAt,
	}
	if record.SessionID != nil {
		sessionID := record.SessionID.String()
		response.SessionID = &sessionID
	}
	return response
}

// streakToDTOResponse converts a domain.StreakState to a StreakResponse.
// A zero-valued state (user never practiced) serializes with no last
// activity date.
func streakToDTOResponse(state *domain.StreakState) StreakResponse {
	response := StreakResponse{
		UserID:        state.UserID.String(),
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
	}
	if !state.LastActivityDate.IsZero() {
		response.LastActivityDate = state.LastActivityDate.String()
	}
	return response
}
