// Package announce produces the daily broadcast messages and fires them on a
// UTC schedule.
//
// WHAT IS AN ANNOUNCEMENT?
//
// One of four actions tied to the challenge calendar: the morning challenge
// reveal, the evening deadline reminder, the late-night solution reveal and
// a one-off resource promo on the first day. Each action works out today's
// challenge day, renders its Markdown text and sends it to every configured
// group.
//
//	cron trigger ─┐
//	              ├─► Announcer.Fire(action) ─► Resolver ─► Sender × N groups
//	admin API ────┘
//
// Both entry points go through Fire, which lets at most one run of a given
// action proceed at a time. A delivery failure to one group is logged and
// counted in the Report; it never stops the other groups.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/challenge"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/transport"
)

// ChallengeResolver is satisfied by *challenge.Resolver.
type ChallengeResolver interface {
	Resolve(ctx context.Context, day int) challenge.Resolution
}

// Config holds the broadcast settings.
type Config struct {
	Destinations     []int64
	StartDate        time.Time
	TotalDays        int
	ChallengeURL     string
	ResourceVaultURL string
}

// Report summarises one fired action.
type Report struct {
	Action    model.Action `json:"action"`
	Day       int          `json:"day"`
	Skipped   bool         `json:"skipped"`
	Delivered int          `json:"delivered"`
	Failed    int          `json:"failed"`
}

// Announcer renders and broadcasts the scheduled messages. It is safe for
// concurrent use by the scheduler and the admin API.
type Announcer struct {
	cfg      Config
	resolver ChallengeResolver
	sender   transport.Sender
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	running map[model.Action]bool
}

// NewAnnouncer creates an Announcer that sends through sender and looks
// challenges up through resolver.
func NewAnnouncer(cfg Config, resolver ChallengeResolver, sender transport.Sender, logger *slog.Logger) *Announcer {
	return &Announcer{
		cfg:      cfg,
		resolver: resolver,
		sender:   sender,
		now:      time.Now,
		logger:   logger,
		running:  make(map[model.Action]bool),
	}
}

// CurrentDay is the 1-based challenge day for now: the start date is day 1.
// Every action uses this index.
func (a *Announcer) CurrentDay(now time.Time) int {
	elapsed := model.DayOf(now).Sub(model.DayOf(a.cfg.StartDate))
	return int(elapsed/(24*time.Hour)) + 1
}

// InRange reports whether day falls inside the challenge.
func (a *Announcer) InRange(day int) bool {
	return day >= 1 && day <= a.cfg.TotalDays
}

// Fire dispatches action. Unknown actions are a validation error. A second
// Fire of an action that is still broadcasting returns an ErrConflict error
// and sends nothing.
func (a *Announcer) Fire(ctx context.Context, action model.Action) (Report, error) {
	if _, ok := model.ParseAction(string(action)); !ok {
		return Report{}, apperror.ValidationFailed("action", fmt.Sprintf("unknown announcement action %q", action))
	}
	if !a.acquire(action) {
		a.logger.Warn("announcement already running", slog.String("action", string(action)))
		return Report{Action: action}, &apperror.AppError{
			Err:     apperror.ErrConflict,
			Message: fmt.Sprintf("announcement %s is already running", action),
		}
	}
	defer a.release(action)

	switch action {
	case model.ActionRevealChallenge:
		return a.FireChallengeReveal(ctx), nil
	case model.ActionSendReminder:
		return a.FireReminder(ctx), nil
	case model.ActionRevealSolution:
		return a.FireSolutionReveal(ctx), nil
	case model.ActionSendResourcePromo:
		return a.FireResourcePromo(ctx), nil
	default:
		return Report{}, apperror.ValidationFailed("action", fmt.Sprintf("unknown announcement action %q", action))
	}
}

func (a *Announcer) acquire(action model.Action) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running[action] {
		return false
	}
	a.running[action] = true
	return true
}

func (a *Announcer) release(action model.Action) {
	a.mu.Lock()
	delete(a.running, action)
	a.mu.Unlock()
}

// FireChallengeReveal announces today's challenge.
func (a *Announcer) FireChallengeReveal(ctx context.Context) Report {
	rep, ok := a.begin(model.ActionRevealChallenge)
	if !ok {
		return rep
	}

	res := a.resolver.Resolve(ctx, rep.Day)
	a.logger.Info("revealing challenge",
		slog.Int("day", rep.Day),
		slog.String("source", string(res.Source)),
	)

	a.broadcast(ctx, &rep, challengeMessage(rep.Day, res.Challenge, a.cfg.ChallengeURL))
	return rep
}

// FireReminder sends the fixed deadline reminder.
func (a *Announcer) FireReminder(ctx context.Context) Report {
	rep, ok := a.begin(model.ActionSendReminder)
	if !ok {
		return rep
	}
	a.broadcast(ctx, &rep, reminderMessage)
	return rep
}

// FireSolutionReveal announces today's solution, or a holding message while
// the solution or video link is missing.
func (a *Announcer) FireSolutionReveal(ctx context.Context) Report {
	rep, ok := a.begin(model.ActionRevealSolution)
	if !ok {
		return rep
	}

	c := a.resolver.Resolve(ctx, rep.Day).Challenge

	text := solutionPendingMessage(rep.Day)
	if hasSolution(c, a.cfg.ChallengeURL) {
		text = solutionMessage(rep.Day, c)
	} else {
		a.logger.Info("solution not published yet", slog.Int("day", rep.Day))
	}

	a.broadcast(ctx, &rep, text)
	return rep
}

// FireResourcePromo broadcasts the resource vault promo on day 1 only.
func (a *Announcer) FireResourcePromo(ctx context.Context) Report {
	rep, ok := a.begin(model.ActionSendResourcePromo)
	if !ok {
		return rep
	}
	if rep.Day != 1 {
		rep.Skipped = true
		return rep
	}
	a.broadcast(ctx, &rep, resourcePromoMessage(a.cfg.ResourceVaultURL))
	return rep
}

func (a *Announcer) begin(action model.Action) (Report, bool) {
	rep := Report{Action: action, Day: a.CurrentDay(a.now())}
	if !a.InRange(rep.Day) {
		a.logger.Info("outside challenge window, skipping",
			slog.String("action", string(action)),
			slog.Int("day", rep.Day),
		)
		rep.Skipped = true
		return rep, false
	}
	return rep, true
}

// broadcast sends text to every destination. A failed destination is logged
// and counted; the rest still receive the message.
func (a *Announcer) broadcast(ctx context.Context, rep *Report, text string) {
	if len(a.cfg.Destinations) == 0 {
		a.logger.Warn("no broadcast destinations configured", slog.String("action", string(rep.Action)))
		return
	}

	for _, dest := range a.cfg.Destinations {
		if err := a.sender.SendMessage(ctx, dest, text, transport.FormatMarkdown); err != nil {
			rep.Failed++
			a.logger.Error("failed to deliver announcement",
				slog.String("action", string(rep.Action)),
				slog.Int64("chat_id", dest),
				slog.String("error", err.Error()),
			)
			continue
		}
		rep.Delivered++
		a.logger.Info("announcement delivered",
			slog.String("action", string(rep.Action)),
			slog.Int64("chat_id", dest),
		)
	}
}
