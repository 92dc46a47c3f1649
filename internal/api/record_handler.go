package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/api/middleware"
	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/feedback"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/service"
)

// RecordHandler handles record-logging HTTP requests
type RecordHandler struct {
	recordService service.RecordService
	scorer        feedback.Scorer
}

// NewRecordHandler creates a new RecordHandler. The scorer may be nil, in
// which case scored submissions are stored unscored.
func NewRecordHandler(recordService service.RecordService, scorer feedback.Scorer) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		scorer:        scorer,
	}
}

// AppendRecord handles POST /api/records requests
func (h *RecordHandler) AppendRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req AppendRecordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sessionID, err := parseOptionalUUID(req.SessionID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	record, err := h.recordService.Append(r.Context(), service.AppendParams{
		UserID:           userID,
		SessionID:        sessionID,
		ContentID:        req.ContentID,
		IsCorrect:        req.IsCorrect,
		TimeSpentSeconds: req.TimeSpentSeconds,
		UserAnswer:       req.UserAnswer,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, recordToDTOResponse(record))
}

// AppendScoredRecord handles POST /api/records/scored requests.
// The answer is scored by the AI feedback service first; if scoring fails the
// record is stored unscored rather than losing the learner's answer.
func (h *RecordHandler) AppendScoredRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req AppendScoredRecordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sessionID, err := parseOptionalUUID(req.SessionID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	userAnswer, err := json.Marshal(req.Answer)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	payload := h.scoreSubmission(r, req)
	if payload == nil {
		// Degraded path: keep the answer, skip correctness.
		record, err := h.recordService.Append(r.Context(), service.AppendParams{
			UserID:           userID,
			SessionID:        sessionID,
			ContentID:        req.ContentID,
			TimeSpentSeconds: req.TimeSpentSeconds,
			UserAnswer:       userAnswer,
		})
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusCreated, recordToDTOResponse(record))
		return
	}

	record, err := h.recordService.AppendScored(r.Context(), service.AppendScoredParams{
		UserID:           userID,
		SessionID:        sessionID,
		ContentID:        req.ContentID,
		TimeSpentSeconds: req.TimeSpentSeconds,
		UserAnswer:       userAnswer,
		Feedback:         payload,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, recordToDTOResponse(record))
}

// GetRecord handles GET /api/records/{id} requests
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid record ID")
		return
	}

	record, err := h.recordService.Get(r.Context(), recordID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Records are private: a foreign record reads as absent.
	if record.UserID != userID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToDTOResponse(record))
}

// scoreSubmission calls the feedback scorer and returns the payload, or nil
// when scoring is unavailable or failed.
func (h *RecordHandler) scoreSubmission(r *http.Request, req AppendScoredRecordRequest) json.RawMessage {
	if h.scorer == nil {
		return nil
	}

	payload, err := h.scorer.Score(r.Context(), feedback.Submission{
		ContentType: domain.ContentType(req.ContentType),
		Prompt:      req.Prompt,
		Answer:      req.Answer,
	})
	if err != nil {
		log := logger.FromContextOrDefault(r.Context(), nil)
		log.Warn("scoring failed, storing record unscored",
			"error", err,
			"content_id", req.ContentID)
		return nil
	}

	return payload
}

// parseOptionalUUID parses a nullable UUID string from a request body.
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
