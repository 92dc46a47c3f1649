package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lingo-api/internal/api"
	apiMiddleware "github.com/phrazzld/lingo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret)
	sessionHandler := api.NewSessionHandler(app.sessionService)
	recordHandler := api.NewRecordHandler(app.recordService, app.scorer)
	streakHandler := api.NewStreakHandler(app.streakService)
	dashboardHandler := api.NewDashboardHandler(app.statsService)

	// Register routes; every endpoint is scoped to the authenticated user.
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Session lifecycle
		r.Post("/sessions", sessionHandler.StartSession)
		r.Post("/sessions/{id}/close", sessionHandler.CloseSession)
		r.Get("/sessions/{id}", sessionHandler.GetSession)

		// Record logging
		r.Post("/records", recordHandler.AppendRecord)
		r.Post("/records/scored", recordHandler.AppendScoredRecord)
		r.Get("/records/{id}", recordHandler.GetRecord)

		// Streak
		r.Post("/streak/touch", streakHandler.TouchStreak)
		r.Get("/streak", streakHandler.GetStreak)

		// Dashboard reads
		r.Get("/dashboard/stats", dashboardHandler.GetStats)
		r.Get("/dashboard/plan", dashboardHandler.GetPlan)
		r.Get("/dashboard/accuracy", dashboardHandler.GetAccuracy)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
