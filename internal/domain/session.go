package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ContentType identifies one of the five practice domains.
type ContentType string

// Possible content type values
const (
	ContentTypeVocabulary ContentType = "vocabulary"
	ContentTypeReading    ContentType = "reading"
	ContentTypeListening  ContentType = "listening"
	ContentTypeSpeaking   ContentType = "speaking"
	ContentTypeWriting    ContentType = "writing"
)

// AllContentTypes lists every content type in display order.
// The dashboard plan iterates this slice, so the order is stable.
var AllContentTypes = []ContentType{
	ContentTypeVocabulary,
	ContentTypeReading,
	ContentTypeListening,
	ContentTypeSpeaking,
	ContentTypeWriting,
}

// SessionType identifies the intended length of a practice session.
type SessionType string

// Possible session type values
const (
	SessionTypeQuick    SessionType = "quick"
	SessionTypeStandard SessionType = "standard"
	SessionTypeDeep     SessionType = "deep"
)

// Common validation errors for LearningSession
var (
	ErrEmptySessionID       = errors.New("learning session ID cannot be empty")
	ErrEmptySessionUserID   = errors.New("learning session user ID cannot be empty")
	ErrInvalidContentType   = errors.New("invalid content type")
	ErrInvalidSessionType   = errors.New("invalid session type")
	ErrInvalidDuration      = errors.New("duration seconds must be greater than or equal to 0")
	ErrSessionAlreadyClosed = errors.New("learning session is already closed")
)

// LearningSession represents one bounded practice interval of a single
// content type. It is opened when an exercise starts and closed exactly once
// when the exercise ends; abandoned sessions simply stay open.
type LearningSession struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	ContentType     ContentType `json:"content_type"`
	SessionType     SessionType `json:"session_type"`
	StartedAt       time.Time   `json:"started_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	DurationSeconds *int        `json:"duration_seconds,omitempty"`
	IsCompleted     bool        `json:"is_completed"`
}

// NewLearningSession creates a new open session for the given user.
// It generates a new UUID for the session ID and stamps StartedAt with the
// provided time. Returns an error if validation fails.
func NewLearningSession(
	userID uuid.UUID,
	sessionType SessionType,
	contentType ContentType,
	startedAt time.Time,
) (*LearningSession, error) {
	session := &LearningSession{
		ID:          uuid.New(),
		UserID:      userID,
		ContentType: contentType,
		SessionType: sessionType,
		StartedAt:   startedAt.UTC(),
		IsCompleted: false,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the LearningSession has valid data.
// Returns an error if any field fails validation.
func (s *LearningSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if !IsValidContentType(s.ContentType) {
		return ErrInvalidContentType
	}

	if !isValidSessionType(s.SessionType) {
		return ErrInvalidSessionType
	}

	// CompletedAt and DurationSeconds are set together, exactly once.
	if s.IsCompleted {
		if s.CompletedAt == nil || s.DurationSeconds == nil {
			return ErrSessionAlreadyClosed
		}
		if *s.DurationSeconds < 0 {
			return ErrInvalidDuration
		}
	} else if s.CompletedAt != nil || s.DurationSeconds != nil {
		return ErrSessionAlreadyClosed
	}

	return nil
}

// Close marks the session as completed at the given time with the given
// duration. Returns ErrSessionAlreadyClosed if the session is already closed;
// the caller decides whether that is an error or the idempotent no-op path.
func (s *LearningSession) Close(completedAt time.Time, durationSeconds int) error {
	if s.IsCompleted {
		return ErrSessionAlreadyClosed
	}

	if durationSeconds < 0 {
		return ErrInvalidDuration
	}

	completed := completedAt.UTC()
	s.CompletedAt = &completed
	s.DurationSeconds = &durationSeconds
	s.IsCompleted = true
	return nil
}

// IsValidContentType checks if the given value is a valid ContentType.
func IsValidContentType(ct ContentType) bool {
	switch ct {
	case ContentTypeVocabulary, ContentTypeReading, ContentTypeListening,
		ContentTypeSpeaking, ContentTypeWriting:
		return true
	default:
		return false
	}
}

// isValidSessionType checks if the given value is a valid SessionType.
func isValidSessionType(st SessionType) bool {
	switch st {
	case SessionTypeQuick, SessionTypeStandard, SessionTypeDeep:
		return true
	default:
		return false
	}
}
