package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. AGENT_SERVER_PORT.
const EnvPrefix = "AGENT"

// setDefaults registers the default value of every key. Registering a key is
// also what lets AutomaticEnv bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "")

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("calendar.api_key", "")
	v.SetDefault("calendar.base_url", "https://www.googleapis.com/calendar/v3/")
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.upcoming_window", time.Hour)
	v.SetDefault("calendar.timeout", 10*time.Second)

	v.SetDefault("mail.sendgrid_api_key", "")
	v.SetDefault("mail.base_url", "https://api.sendgrid.com")
	v.SetDefault("mail.from_address", "agent@example.com")
	v.SetDefault("mail.fallback_recipient", "remantsega@gmail.com")
	v.SetDefault("mail.max_retries", 2)
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.digest_recipient", "user@example.com")
	v.SetDefault("scheduler.digest_hour", 9)
	v.SetDefault("scheduler.digest_minute", 0)
	v.SetDefault("scheduler.meeting_check_interval", time.Minute)
	v.SetDefault("scheduler.reminder_window", 15*time.Minute)
	v.SetDefault("scheduler.reminder_dedup", true)
	v.SetDefault("scheduler.dedup_cache_size", 1024)

	v.SetDefault("metrics.enabled", true)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first if present; it never
// overrides variables already set in the process environment.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
