package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/challenge-bot/internal/announce"
	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/auth"
	"github.com/sakif/challenge-bot/internal/challenge"
	"github.com/sakif/challenge-bot/internal/model"
)

// ChallengeResolver is satisfied by *challenge.Resolver.
type ChallengeResolver interface {
	Resolve(ctx context.Context, day int) challenge.Resolution
}

// Announcer is satisfied by *announce.Announcer.
type Announcer interface {
	Fire(ctx context.Context, action model.Action) (announce.Report, error)
}

// ChallengeHandler serves resolved challenge days and manual announcements.
type ChallengeHandler struct {
	resolver  ChallengeResolver
	announcer Announcer
	totalDays int
	logger    *slog.Logger
}

func NewChallengeHandler(resolver ChallengeResolver, announcer Announcer, totalDays int, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		resolver:  resolver,
		announcer: announcer,
		totalDays: totalDays,
		logger:    logger,
	}
}

// HandleGetChallenge resolves a day through the fallback chain. The response
// names the tier that answered.
//
// HTTP: GET /api/challenges/{day}
func (h *ChallengeHandler) HandleGetChallenge(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 || day > h.totalDays {
		writeError(w, apperror.ValidationFailed("day", fmt.Sprintf("day must be between 1 and %d", h.totalDays)))
		return
	}

	writeJSON(w, http.StatusOK, h.resolver.Resolve(r.Context(), day))
}

// HandleFireAnnouncement runs one announcement action now. Out-of-window
// days come back as a skipped report, not an error.
//
// HTTP: POST /api/announcements/{action}   (bearer token required)
//
// 409 Conflict while the same action is still broadcasting.
func (h *ChallengeHandler) HandleFireAnnouncement(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "action")
	action, ok := model.ParseAction(raw)
	if !ok {
		writeError(w, apperror.ValidationFailed("action", fmt.Sprintf("unknown announcement action %q", raw)))
		return
	}

	operator, _ := auth.SubjectFromContext(r.Context())
	h.logger.Info("manual announcement requested",
		slog.String("action", string(action)),
		slog.String("operator", operator),
	)

	rep, err := h.announcer.Fire(r.Context(), action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
