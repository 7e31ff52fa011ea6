// Package server wires the admin HTTP API: router, middleware, routes and
// graceful shutdown.
//
// Routes:
//
//	GET  /healthz                      liveness
//	GET  /api/leaderboard?limit=N      best streaks
//	GET  /api/users/{userID}/streak    one user's current streak
//	GET  /api/challenges/{day}         resolved challenge and its source
//	POST /api/announcements/{action}   fire an announcement now (bearer token)
//
// The announcement route is only registered when a token service is given.
//
// MIDDLEWARE ORDER:
// RequestID runs first so the access log line can carry the request ID.
// Logger wraps Recoverer, so a panicking handler is turned into a 500 that
// still gets its access log line.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/challenge-bot/internal/auth"
	"github.com/sakif/challenge-bot/internal/handler"
	"github.com/sakif/challenge-bot/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

// Config is the listener setting plus what the routes need to validate input.
type Config struct {
	Port      int
	TotalDays int
}

// Deps are the services behind the routes.
type Deps struct {
	Streaks   handler.Streaks
	Resolver  handler.ChallengeResolver
	Announcer handler.Announcer
	Tokens    *auth.TokenService // nil disables the announcement route
}

// Server owns the chi router for the admin API.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New builds the router and registers every route.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", handler.HandleHealth)

	stats := handler.NewStatsHandler(deps.Streaks, s.logger)
	challenges := handler.NewChallengeHandler(deps.Resolver, deps.Announcer, s.config.TotalDays, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", stats.HandleLeaderboard)
		r.Get("/users/{userID}/streak", stats.HandleUserStreak)
		r.Get("/challenges/{day}", challenges.HandleGetChallenge)

		if deps.Tokens == nil {
			s.logger.Warn("JWT_SECRET not set, manual announcements are disabled")
			return
		}
		r.With(auth.RequireToken(deps.Tokens)).Post("/announcements/{action}", challenges.HandleFireAnnouncement)
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // manual announcements wait for the broadcast
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("admin API starting", slog.Int("port", s.config.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("admin API stopped gracefully")
		return nil
	}
}
