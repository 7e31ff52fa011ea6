package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sakif/challenge-bot/internal/challenge"
	"github.com/sakif/challenge-bot/internal/config"
	"github.com/sakif/challenge-bot/internal/fetch"
	"github.com/sakif/challenge-bot/internal/logging"
	"github.com/sakif/challenge-bot/internal/repository/sqlite"
)

const userAgent = "challenge-bot/1.0"

// app holds what every subcommand shares: settings, logger and, once
// opened, the store.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	logClose io.Closer
	db       *sqlite.DB
}

// setup loads configuration and builds the logger. requireBot also demands
// the bot token.
func setup(requireBot bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	validate := cfg.Validate
	if requireBot {
		validate = cfg.ValidateBot
	}
	if err := validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return &app{cfg: cfg, logger: logger, logClose: closer}, nil
}

// openStore opens the SQLite database, creating its directory if needed.
func (a *app) openStore() error {
	if dir := filepath.Dir(a.cfg.DBPath); dir != "." && a.cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlite.New(a.cfg.DBPath)
	if err != nil {
		return err
	}
	a.db = db
	a.logger.Info("database ready", slog.String("path", a.cfg.DBPath))
	return nil
}

// resolver builds the lookup chain: store, dataset, calendar page, placeholder.
func (a *app) resolver(ctx context.Context) *challenge.Resolver {
	fetcher := fetch.NewClient(&http.Client{}, userAgent)
	logger := a.logger.With(slog.String("component", "challenge"))

	ds := challenge.LoadDataset(ctx, fetcher, a.cfg.ChallengesURL, a.cfg.DatasetTimeout, logger)

	return challenge.NewResolver(a.db, logger,
		challenge.NewCacheStrategy(a.db, logger),
		challenge.NewDatasetStrategy(ds),
		challenge.NewScrapeStrategy(fetcher, a.cfg.ChallengeURL, a.cfg.ScrapeTimeout, logger),
		challenge.NewFallbackStrategy(a.cfg.ChallengeURL),
	)
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}
	a.logClose.Close()
}
