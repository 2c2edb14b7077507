package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("TIMEZONE", "Europe/Madrid")
}

func TestLoadFailsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TIMEZONE", "Europe/Madrid")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}

func TestLoadFailsWithoutTimezone(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("TIMEZONE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoadFailsOnUnknownTimezone(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("TIMEZONE", "Nowhere/Atlantis")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0 11 * * *", cfg.CronSpecDailyPrompt)
	assert.Equal(t, "0 0 * * *", cfg.CronSpecMidnightReset)
	assert.Equal(t, 15*time.Minute, cfg.RetryInterval)
	assert.Equal(t, 12, cfg.MaxReminders)
	assert.Equal(t, -1, cfg.QuietAfterMinutes)
	assert.False(t, cfg.PromptOnLateJoin)
	assert.False(t, cfg.FirstPromptCounts)
	assert.Equal(t, int64(0), cfg.AdminTelegramID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotNil(t, cfg.Location)
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("RETRY_INTERVAL_SECONDS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeCap(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_REMINDERS", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesQuietAfter(t *testing.T) {
	setRequired(t)
	t.Setenv("QUIET_AFTER", "14:00")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 14*60, cfg.QuietAfterMinutes)
}

func TestLoadRejectsMalformedQuietAfter(t *testing.T) {
	setRequired(t)
	t.Setenv("QUIET_AFTER", "half past two")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesOptions(t *testing.T) {
	setRequired(t)
	t.Setenv("RETRY_INTERVAL_SECONDS", "30")
	t.Setenv("MAX_REMINDERS", "2")
	t.Setenv("PROMPT_ON_LATE_JOIN", "true")
	t.Setenv("FIRST_PROMPT_COUNTS", "true")
	t.Setenv("ADMIN_TELEGRAM_ID", "12345")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RetryInterval)
	assert.Equal(t, 2, cfg.MaxReminders)
	assert.True(t, cfg.PromptOnLateJoin)
	assert.True(t, cfg.FirstPromptCounts)
	assert.Equal(t, int64(12345), cfg.AdminTelegramID)
}
