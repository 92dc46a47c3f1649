package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"text/template"
	"time"

	"github.com/phrazzld/lingo-api/internal/config"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/feedback"
	"google.golang.org/genai"
)

// Bounds of the rubric score scale.
const (
	minRubricScore = 0
	maxRubricScore = 9
)

// GeminiScorer implements the feedback.Scorer interface using Google's
// Gemini API to score speaking and writing submissions.
type GeminiScorer struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains scorer-specific configuration
	config config.FeedbackConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewGeminiScorer creates a new instance of GeminiScorer with the provided
// dependencies. The prompt template is read and parsed once at construction;
// a missing or malformed template fails fast with ErrInvalidConfig.
func NewGeminiScorer(ctx context.Context, logger *slog.Logger, cfg config.FeedbackConfig) (*GeminiScorer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", feedback.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", feedback.ErrInvalidConfig)
	}

	if cfg.PromptTemplatePath == "" {
		return nil, fmt.Errorf("%w: prompt template path cannot be empty", feedback.ErrInvalidConfig)
	}

	templateContent, err := os.ReadFile(cfg.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			feedback.ErrInvalidConfig, cfg.PromptTemplatePath, err)
	}

	promptTemplate, err := template.New("feedback").Parse(string(templateContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			feedback.ErrInvalidConfig, err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			feedback.ErrInvalidConfig, err)
	}

	return &GeminiScorer{
		logger:         logger.With(slog.String("component", "gemini_scorer")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// Ensure GeminiScorer implements feedback.Scorer
var _ feedback.Scorer = (*GeminiScorer)(nil)

// Score implements feedback.Scorer.Score.
func (s *GeminiScorer) Score(ctx context.Context, submission feedback.Submission) (json.RawMessage, error) {
	prompt, err := s.createPrompt(ctx, submission)
	if err != nil {
		return nil, err
	}

	payload, err := s.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// createPrompt renders the prompt template with the submission's content
// type, exercise prompt, and answer text.
func (s *GeminiScorer) createPrompt(ctx context.Context, submission feedback.Submission) (string, error) {
	if submission.Answer == "" {
		return "", ErrEmptyAnswer
	}

	if submission.ContentType != domain.ContentTypeSpeaking && submission.ContentType != domain.ContentTypeWriting {
		return "", fmt.Errorf("%w: content type %q is not scorable",
			feedback.ErrScoringFailed, submission.ContentType)
	}

	data := promptData{
		ContentType: string(submission.ContentType),
		Prompt:      submission.Prompt,
		Answer:      submission.Answer,
	}

	s.logger.DebugContext(ctx, "Generating prompt from template",
		"content_type", submission.ContentType,
		"answer_length", len(submission.Answer))

	var promptBuffer bytes.Buffer
	if err := s.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return promptBuffer.String(), nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff
// retry logic.
//
// It attempts the call up to config.MaxRetries additional times, with
// exponential backoff and jitter between attempts for transient errors.
// Permanent errors (malformed responses, content blocked by safety filters)
// are returned immediately without retrying.
func (s *GeminiScorer) callGeminiWithRetry(ctx context.Context, prompt string) (json.RawMessage, error) {
	maxRetries := s.config.MaxRetries
	baseDelaySeconds := s.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		s.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		s.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1
		s.logger.InfoContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var payload json.RawMessage
		var isTransientError bool

		resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			// Network and quota failures are worth another attempt.
			isTransientError = true
			s.logger.ErrorContext(ctx, "Gemini API call error",
				"error", err,
				"attempt", attemptNum)
		} else {
			var text string
			text, err = responseText(resp)
			if err == nil {
				payload, err = validatePayload(text)
			}
			isTransientError = false
		}

		if err == nil {
			s.logger.InfoContext(ctx, "Gemini API call successful",
				"attempt", attemptNum)
			return payload, nil
		}

		s.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if errors.Is(err, feedback.ErrContentBlocked) || errors.Is(err, feedback.ErrInvalidResponse) {
			s.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
				"error_type", err)
			return nil, err
		}

		if attempt >= maxRetries {
			s.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				feedback.ErrTransientFailure, maxRetries)
		}

		if !isTransientError {
			s.logger.WarnContext(ctx, "Non-transient error occurred, not retrying")
			return nil, err
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delaySeconds := backoffSeconds * jitterFactor
		delay := time.Duration(delaySeconds * float64(time.Second))

		s.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay_seconds", delaySeconds)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			s.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", feedback.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return nil, fmt.Errorf("%w: failed after %d attempts",
		feedback.ErrTransientFailure, attempt)
}

// responseText extracts the generated text from the first candidate,
// rejecting empty and safety-blocked responses.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", feedback.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", feedback.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", feedback.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", feedback.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text, nil
}

// validatePayload checks that the model's response text is a feedback payload
// with an in-range "overall" score, and returns the text verbatim when it is.
// The stored payload is the model's own bytes, not a re-serialization.
func validatePayload(text string) (json.RawMessage, error) {
	var parsed feedbackSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", feedback.ErrInvalidResponse, err)
	}

	overall, ok := parsed.Scores["overall"]
	if !ok {
		return nil, fmt.Errorf("%w: missing overall score", feedback.ErrInvalidResponse)
	}
	if overall < minRubricScore || overall > maxRubricScore {
		return nil, fmt.Errorf("%w: overall score %d out of range [%d, %d]",
			feedback.ErrInvalidResponse, overall, minRubricScore, maxRubricScore)
	}
	for rubric, score := range parsed.Scores {
		if score < minRubricScore || score > maxRubricScore {
			return nil, fmt.Errorf("%w: %s score %d out of range [%d, %d]",
				feedback.ErrInvalidResponse, rubric, score, minRubricScore, maxRubricScore)
		}
	}

	return json.RawMessage(text), nil
}
