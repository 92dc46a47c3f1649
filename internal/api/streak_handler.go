package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/api/middleware"
	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/service"
)

// StreakHandler handles streak HTTP requests
type StreakHandler struct {
	streakService service.StreakService
}

// NewStreakHandler creates a new StreakHandler
func NewStreakHandler(streakService service.StreakService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
	}
}

// TouchStreak handles POST /api/streak/touch requests.
// The body is empty; the server decides what "today" is. Touching twice on
// the same day returns the same state both times.
func (h *StreakHandler) TouchStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	state, err := h.streakService.Touch(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, streakToDTOResponse(state))
}

// GetStreak handles GET /api/streak requests
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	state, err := h.streakService.Get(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, streakToDTOResponse(state))
}
