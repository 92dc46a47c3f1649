package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/api/middleware"
	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/service"
)

// DashboardHandler handles the read-only dashboard HTTP requests
type DashboardHandler struct {
	statsService service.StatsService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(statsService service.StatsService) *DashboardHandler {
	return &DashboardHandler{
		statsService: statsService,
	}
}

// GetStats handles GET /api/dashboard/stats requests
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	summary, err := h.statsService.Summary(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// GetPlan handles GET /api/dashboard/plan requests
func (h *DashboardHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	plan, err := h.statsService.TodaysPlan(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, plan)
}

// GetAccuracy handles GET /api/dashboard/accuracy?content_type=... requests
func (h *DashboardHandler) GetAccuracy(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	contentType := domain.ContentType(r.URL.Query().Get("content_type"))
	if !domain.IsValidContentType(contentType) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid content type")
		return
	}

	accuracy, err := h.statsService.AccuracyByContentType(r.Context(), userID, contentType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, accuracy)
}
