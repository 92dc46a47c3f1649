// Package gemini provides an implementation of the feedback.Scorer interface
// using Google's Gemini API.
package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	ContentType string
	Prompt      string
	Answer      string
}

// feedbackSchema represents the expected structure of a scoring response from
// the Gemini API. The raw response text, not this struct, is what callers
// store; the struct exists to validate shape and bounds before accepting it.
type feedbackSchema struct {
	// Scores holds the per-rubric scores plus the mandatory "overall" key,
	// each on the 0-9 scale.
	Scores map[string]int `json:"scores"`

	// Summary is a short overall assessment of the answer.
	Summary string `json:"summary,omitempty"`

	// Suggestions are concrete improvements the learner should work on.
	Suggestions []string `json:"suggestions,omitempty"`
}
