package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
)

// defaultLeaderboardLimit applies when the request has no limit parameter.
const defaultLeaderboardLimit = 10

// Streaks is the read side of *service.StreakService.
type Streaks interface {
	CurrentStreak(ctx context.Context, userID int64) (int, error)
	TopStreaks(ctx context.Context, limit int) ([]model.StreakEntry, error)
}

// StatsHandler exposes streak data read-only.
type StatsHandler struct {
	streaks Streaks
	logger  *slog.Logger
}

func NewStatsHandler(streaks Streaks, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{streaks: streaks, logger: logger}
}

// UserStreakResponse is the body of GET /api/users/{userID}/streak.
type UserStreakResponse struct {
	UserID int64 `json:"userId"`
	Streak int   `json:"streak"`
}

// HandleLeaderboard lists users by best streak. A missing limit means the
// top 10; limit=0 is honoured and returns an empty list. The service caps
// large values.
//
// HTTP: GET /api/leaderboard?limit=N
func (h *StatsHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperror.ValidationFailed("limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.streaks.TopStreaks(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.StreakEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleUserStreak returns the streak on the user's latest submission.
//
// HTTP: GET /api/users/{userID}/streak
func (h *StatsHandler) HandleUserStreak(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("userID", "userID must be an integer"))
		return
	}

	streak, err := h.streaks.CurrentStreak(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserStreakResponse{UserID: userID, Streak: streak})
}
