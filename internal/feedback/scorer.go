package feedback

import (
	"context"
	"encoding/json"

	"github.com/phrazzld/lingo-api/internal/domain"
)

// Submission is one speaking or writing answer to be scored.
type Submission struct {
	// ContentType selects the rubric; only speaking and writing submissions
	// are scorable.
	ContentType domain.ContentType

	// Prompt is the exercise prompt the learner responded to.
	Prompt string

	// Answer is the learner's response: a speech transcript or an essay.
	Answer string
}

// Scorer defines the interface for scoring free-form answers.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Scorer interface {
	// Score evaluates the submission against the rubric for its content type
	// and returns the feedback payload verbatim: per-rubric scores plus an
	// "overall" score on the 0-9 scale under a "scores" key.
	//
	// The payload is stored as-is on the learning record; callers derive
	// correctness from it, not from this method's return.
	Score(ctx context.Context, submission Submission) (json.RawMessage, error)
}
