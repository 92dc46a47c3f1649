package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyAnswer is returned when a submission has no answer text.
	ErrEmptyAnswer = errors.New("submission answer cannot be empty")
)
