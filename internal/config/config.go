package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Streak   StreakConfig   `mapstructure:"streak"   validate:"required"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication related settings.
// The service does not issue tokens; it only verifies bearer tokens minted by
// the identity provider, so the shared signing secret is all it needs.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// StreakConfig contains the streak engine's calendar settings.
// Timezone is the single reference time zone in which "today" is computed for
// every user, regardless of which device issued the request.
type StreakConfig struct {
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// FeedbackConfig contains settings for the external AI feedback scorer.
// The scorer is optional: with an empty API key the server runs without
// AI-scored speaking/writing submissions.
type FeedbackConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	MaxRetries         int    `mapstructure:"max_retries"        validate:"gte=0"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
