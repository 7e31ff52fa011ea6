// Package config loads runtime settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/logging"
	"github.com/sakif/challenge-bot/internal/model"
)

type Config struct {
	BotToken     string
	Destinations []int64

	StartDate        time.Time
	TotalDays        int
	ChallengesURL    string // remote dataset; empty uses the built-in table
	ChallengeURL     string // public challenge calendar, scraped as a fallback
	ResourceVaultURL string
	LinkPrefixes     []string

	DBPath    string
	Port      int // 0 disables the admin API
	JWTSecret string

	DatasetTimeout time.Duration
	ScrapeTimeout  time.Duration
	JobTimeout     time.Duration
	SendRatePerSec float64

	Log logging.Options
}

// Load reads .env (if present) and the environment. Malformed values are
// reported as a validation error naming the variable.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		BotToken:     getEnv("API_KEY", ""),
		Destinations: p.int64List("GROUP_CHAT_ID", ""),

		StartDate:        p.date("CHALLENGE_START_DATE", "2025-04-01"),
		TotalDays:        p.int("CHALLENGE_TOTAL_DAYS", "30"),
		ChallengesURL:    getEnv("CHALLENGES_JSON_URL", ""),
		ChallengeURL:     getEnv("CHALLENGE_URL", "https://web3compass.xyz/challenge-calendar"),
		ResourceVaultURL: getEnv("RESOURCE_VAULT_URL", "https://github.com/The-Web3-Compass/Web3-Resources"),
		LinkPrefixes:     splitList(getEnv("ACCEPTED_LINK_PREFIXES", "https://github.com")),

		DBPath:    getEnv("DB_PATH", "data/submissions.db"),
		Port:      p.int("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		DatasetTimeout: p.duration("DATASET_TIMEOUT", "10s"),
		ScrapeTimeout:  p.duration("SCRAPE_TIMEOUT", "15s"),
		JobTimeout:     p.duration("JOB_TIMEOUT", "2m"),
		SendRatePerSec: p.float("SEND_RATE_PER_SEC", "25"),

		Log: logging.Options{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			Path:       getEnv("LOG_PATH", ""),
			MaxSizeMB:  p.int("LOG_MAX_SIZE_MB", "100"),
			MaxBackups: p.int("LOG_MAX_BACKUPS", "3"),
			MaxAgeDays: p.int("LOG_MAX_AGE_DAYS", "7"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	switch {
	case c.TotalDays <= 0:
		return apperror.ValidationFailed("CHALLENGE_TOTAL_DAYS", "CHALLENGE_TOTAL_DAYS must be positive")
	case c.Port < 0 || c.Port > 65535:
		return apperror.ValidationFailed("PORT", fmt.Sprintf("PORT %d is out of range", c.Port))
	case c.DatasetTimeout <= 0 || c.ScrapeTimeout <= 0 || c.JobTimeout <= 0:
		return apperror.ValidationFailed("timeouts", "DATASET_TIMEOUT, SCRAPE_TIMEOUT and JOB_TIMEOUT must be positive")
	case c.DBPath == "":
		return apperror.ValidationFailed("DB_PATH", "DB_PATH is required")
	}
	return nil
}

// ValidateBot additionally requires what talking to the chat platform needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BotToken == "" {
		return apperror.ValidationFailed("API_KEY", "API_KEY is required")
	}
	return nil
}

// parser collects the first malformed variable.
type parser struct {
	err error
}

func (p *parser) fail(key, value, want string) {
	if p.err == nil {
		p.err = apperror.ValidationFailed(key, fmt.Sprintf("%s=%q is not a valid %s", key, value, want))
	}
}

func (p *parser) int(key, fallback string) int {
	v := getEnv(key, fallback)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, v, "integer")
	}
	return n
}

func (p *parser) float(key, fallback string) float64 {
	v := getEnv(key, fallback)
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		p.fail(key, v, "number")
	}
	return f
}

func (p *parser) duration(key, fallback string) time.Duration {
	v := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, v, "duration")
	}
	return d
}

func (p *parser) date(key, fallback string) time.Time {
	v := getEnv(key, fallback)
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(v))
	if err != nil {
		p.fail(key, v, "date (YYYY-MM-DD)")
	}
	return t
}

func (p *parser) int64List(key, fallback string) []int64 {
	v := getEnv(key, fallback)
	var out []int64
	for _, s := range splitList(v) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			p.fail(key, v, "comma-separated list of chat IDs")
			return nil
		}
		out = append(out, n)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
