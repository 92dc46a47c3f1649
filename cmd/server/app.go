package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lingo-api/internal/config"
	"github.com/phrazzld/lingo-api/internal/domain/streak"
	"github.com/phrazzld/lingo-api/internal/feedback"
	"github.com/phrazzld/lingo-api/internal/platform/gemini"
	"github.com/phrazzld/lingo-api/internal/platform/postgres"
	"github.com/phrazzld/lingo-api/internal/service"
	"github.com/phrazzld/lingo-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core dependencies
	logger   *slog.Logger
	db       *sql.DB
	location *time.Location

	// Stores (using interfaces for proper abstraction)
	sessionStore store.LearningSessionStore
	recordStore  store.LearningRecordStore
	streakStore  store.StreakStore

	// Service interfaces
	sessionService service.SessionService
	recordService  service.RecordService
	streakService  service.StreakService
	statsService   service.StatsService

	// scorer is nil when no Gemini API key is configured; scored submissions
	// then degrade to unscored records.
	scorer feedback.Scorer
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	location, err := time.LoadLocation(cfg.Streak.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak timezone %q: %w", cfg.Streak.Timezone, err)
	}
	app.location = location

	// Stores
	app.sessionStore = postgres.NewPostgresLearningSessionStore(db, logger)
	app.recordStore = postgres.NewPostgresLearningRecordStore(db, logger)
	app.streakStore = postgres.NewPostgresStreakStore(db, logger)

	clock := service.NewSystemClock()

	// Services
	app.sessionService = service.NewSessionService(app.sessionStore, clock, logger)
	app.recordService = service.NewRecordService(app.recordStore, clock, logger)
	app.streakService = service.NewStreakService(
		store.NewDBTransactor(db),
		app.streakStore,
		streak.NewService(),
		clock,
		location,
		logger,
	)
	app.statsService = service.NewStatsService(
		app.sessionStore,
		app.recordStore,
		clock,
		location,
		logger,
	)

	// AI feedback scorer, only when configured.
	if cfg.Feedback.GeminiAPIKey != "" {
		scorer, err := gemini.NewGeminiScorer(
			ctx,
			logger.With("component", "feedback_scorer"),
			cfg.Feedback,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize feedback scorer: %w", err)
		}
		app.scorer = scorer
		logger.Info("Feedback scorer initialized", "model", cfg.Feedback.ModelName)
	} else {
		logger.Warn("No Gemini API key configured, speaking/writing submissions will be stored unscored")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
