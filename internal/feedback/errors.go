package feedback

import "errors"

// Common errors returned by the feedback package
var (
	// ErrScoringFailed is returned when scoring fails for any general reason
	ErrScoringFailed = errors.New("failed to score submission")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during scoring")

	// ErrInvalidConfig is returned when the scorer configuration is invalid
	ErrInvalidConfig = errors.New("invalid scorer configuration")
)
