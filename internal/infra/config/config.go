package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken         string
	DatabaseURL           string // empty selects in-memory storage
	AdminTelegramID       int64  // 0 disables the admin commands
	Timezone              string
	Location              *time.Location
	CronSpecDailyPrompt   string // first prompt of the day
	CronSpecMidnightReset string // state reset for the new day
	RetryInterval         time.Duration
	MaxReminders          int
	QuietAfterMinutes     int // minutes since local midnight; -1 disables
	PromptOnLateJoin      bool
	FirstPromptCounts     bool
	LogLevel              string
	Environment           string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	// Optional: without it the bot keeps all state in memory.
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.Timezone = os.Getenv("TIMEZONE")
	if cfg.Timezone == "" {
		return nil, fmt.Errorf("TIMEZONE is not set")
	}
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	cfg.CronSpecDailyPrompt = os.Getenv("CRON_SPEC_DAILY_PROMPT")
	if cfg.CronSpecDailyPrompt == "" {
		cfg.CronSpecDailyPrompt = "0 11 * * *" // Default: 11:00 daily
	}
	cfg.CronSpecMidnightReset = os.Getenv("CRON_SPEC_MIDNIGHT_RESET")
	if cfg.CronSpecMidnightReset == "" {
		cfg.CronSpecMidnightReset = "0 0 * * *" // Default: midnight daily
	}

	intervalSeconds := 900 // Default: 15 minutes
	if intervalStr := os.Getenv("RETRY_INTERVAL_SECONDS"); intervalStr != "" {
		intervalSeconds, err = strconv.Atoi(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRY_INTERVAL_SECONDS: %w", err)
		}
	}
	if intervalSeconds <= 0 {
		return nil, fmt.Errorf("RETRY_INTERVAL_SECONDS must be positive, got %d", intervalSeconds)
	}
	cfg.RetryInterval = time.Duration(intervalSeconds) * time.Second

	cfg.MaxReminders = 12 // Default: at most 12 follow-ups per day
	if maxStr := os.Getenv("MAX_REMINDERS"); maxStr != "" {
		cfg.MaxReminders, err = strconv.Atoi(maxStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_REMINDERS: %w", err)
		}
	}
	if cfg.MaxReminders < 0 {
		return nil, fmt.Errorf("MAX_REMINDERS must not be negative, got %d", cfg.MaxReminders)
	}

	cfg.QuietAfterMinutes = -1
	if quietStr := os.Getenv("QUIET_AFTER"); quietStr != "" {
		cfg.QuietAfterMinutes, err = parseClockMinutes(quietStr)
		if err != nil {
			return nil, fmt.Errorf("invalid QUIET_AFTER: %w", err)
		}
	}

	cfg.PromptOnLateJoin, err = optionalBool("PROMPT_ON_LATE_JOIN")
	if err != nil {
		return nil, err
	}
	cfg.FirstPromptCounts, err = optionalBool("FIRST_PROMPT_COUNTS")
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// parseClockMinutes parses "HH:MM" wall-clock time into minutes since midnight.
func parseClockMinutes(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func optionalBool(name string) (bool, error) {
	value := os.Getenv(name)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return parsed, nil
}
