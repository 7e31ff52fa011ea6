package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/challenge-bot/internal/apperror"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GROUP_CHAT_ID", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Empty(t, cfg.Destinations)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, 30, cfg.TotalDays)
	assert.Equal(t, []string{"https://github.com"}, cfg.LinkPrefixes)
	assert.Equal(t, 10*time.Second, cfg.DatasetTimeout)
	assert.Equal(t, 15*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, 2*time.Minute, cfg.JobTimeout)
	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.ValidateBot(), apperror.ErrValidation)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "123:abc")
	t.Setenv("GROUP_CHAT_ID", "-1001, -1002 ,")
	t.Setenv("CHALLENGE_START_DATE", "2025-06-01")
	t.Setenv("CHALLENGE_TOTAL_DAYS", "14")
	t.Setenv("ACCEPTED_LINK_PREFIXES", "https://github.com, https://gitlab.com")
	t.Setenv("PORT", "0")
	t.Setenv("SCRAPE_TIMEOUT", "3s")
	t.Setenv("SEND_RATE_PER_SEC", "0.5")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []int64{-1001, -1002}, cfg.Destinations)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, 14, cfg.TotalDays)
	assert.Equal(t, []string{"https://github.com", "https://gitlab.com"}, cfg.LinkPrefixes)
	assert.Equal(t, 0, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, 0.5, cfg.SendRatePerSec)
	assert.NoError(t, cfg.ValidateBot())
}

func TestFromEnv_Malformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"GROUP_CHAT_ID", "-1001,general"},
		{"CHALLENGE_START_DATE", "April 1st"},
		{"CHALLENGE_TOTAL_DAYS", "thirty"},
		{"JOB_TIMEOUT", "2 minutes"},
		{"SEND_RATE_PER_SEC", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.key, appErr.Field)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TotalDays:      30,
			Port:           8080,
			DBPath:         "data/submissions.db",
			DatasetTimeout: time.Second,
			ScrapeTimeout:  time.Second,
			JobTimeout:     time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no days", func(c *Config) { c.TotalDays = 0 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.ScrapeTimeout = 0 }},
		{"no db", func(c *Config) { c.DBPath = "" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), apperror.ErrValidation)
		})
	}
}
