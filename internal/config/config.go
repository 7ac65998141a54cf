package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Mail      MailConfig      `mapstructure:"mail" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL keeps task history in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains the language interpreter settings.
// An empty key selects the offline mock interpreter.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
	// MaxRetries is the number of retries after a transient API failure.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	// RetryDelaySeconds is the base of the exponential backoff.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// CalendarConfig contains the calendar collaborator settings.
// An empty key selects the logging mock calendar.
type CalendarConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	CalendarID string `mapstructure:"calendar_id" validate:"required"`
	// UpcomingWindow limits how far ahead upcoming events are listed.
	UpcomingWindow time.Duration `mapstructure:"upcoming_window" validate:"gt=0"`
	// Timeout bounds each API request.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// MailConfig contains the mail collaborator settings.
// An empty key selects the logging mock mailer.
type MailConfig struct {
	SendGridAPIKey    string `mapstructure:"sendgrid_api_key"`
	BaseURL           string `mapstructure:"base_url" validate:"required,url"`
	FromAddress       string `mapstructure:"from_address" validate:"required,email"`
	FallbackRecipient string `mapstructure:"fallback_recipient" validate:"required,email"`
	// MaxRetries is the number of retries after a transient send failure.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	// Timeout bounds each API request.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// SchedulerConfig controls the recurring digest and meeting reminders.
type SchedulerConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	DigestRecipient      string        `mapstructure:"digest_recipient" validate:"required,email"`
	DigestHour           int           `mapstructure:"digest_hour" validate:"gte=0,lte=23"`
	DigestMinute         int           `mapstructure:"digest_minute" validate:"gte=0,lte=59"`
	MeetingCheckInterval time.Duration `mapstructure:"meeting_check_interval" validate:"gt=0"`
	ReminderWindow       time.Duration `mapstructure:"reminder_window" validate:"gt=0"`
	ReminderDedup        bool          `mapstructure:"reminder_dedup"`
	DedupCacheSize       int           `mapstructure:"dedup_cache_size" validate:"gt=0"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
