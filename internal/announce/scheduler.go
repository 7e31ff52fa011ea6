package announce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sakif/challenge-bot/internal/model"
)

// DefaultJobTimeout bounds a run when no timeout is configured.
const DefaultJobTimeout = 2 * time.Minute

// DefaultSchedule is the daily UTC timetable.
func DefaultSchedule() []model.ScheduleEntry {
	return []model.ScheduleEntry{
		{Hour: 0, Minute: 0, Action: model.ActionRevealChallenge},
		{Hour: 21, Minute: 0, Action: model.ActionSendReminder},
		{Hour: 23, Minute: 55, Action: model.ActionRevealSolution},
		{Hour: 9, Minute: 30, Action: model.ActionSendResourcePromo},
	}
}

// Scheduler fires announcer actions on a UTC cron.
//
// Each entry is its own cron job. A job still running when its next trigger
// arrives skips that trigger; different jobs may run at the same time.
type Scheduler struct {
	cron       *cron.Cron
	announcer  *Announcer
	jobTimeout time.Duration
	logger     *slog.Logger
}

// NewScheduler registers entries. Each run gets a context bounded by
// jobTimeout.
func NewScheduler(a *Announcer, entries []model.ScheduleEntry, jobTimeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}
	cl := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		announcer:  a,
		jobTimeout: jobTimeout,
		logger:     logger,
	}

	for _, e := range entries {
		if _, ok := model.ParseAction(string(e.Action)); !ok {
			return nil, fmt.Errorf("announce: unknown action %q", e.Action)
		}
		if _, err := s.cron.AddFunc(e.CronSpec(), s.job(e.Action)); err != nil {
			return nil, fmt.Errorf("announce: scheduling %s at %02d:%02d: %w", e.Action, e.Hour, e.Minute, err)
		}
		logger.Info("announcement scheduled",
			slog.String("action", string(e.Action)),
			slog.String("at", fmt.Sprintf("%02d:%02d UTC", e.Hour, e.Minute)),
		)
	}

	return s, nil
}

// Start begins firing jobs in the background. It does not block.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop halts the triggers and waits for running jobs, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("announce: waiting for running jobs: %w", ctx.Err())
	}
}

// Next returns the next fire time of each job.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Next)
	}
	return out
}

func (s *Scheduler) job(action model.Action) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		start := time.Now()
		rep, err := s.announcer.Fire(ctx, action)
		if err != nil {
			s.logger.Error("announcement failed",
				slog.String("action", string(action)),
				slog.String("error", err.Error()),
			)
			return
		}

		s.logger.Info("announcement finished",
			slog.String("action", string(action)),
			slog.Int("day", rep.Day),
			slog.Bool("skipped", rep.Skipped),
			slog.Int("delivered", rep.Delivered),
			slog.Int("failed", rep.Failed),
			slog.Duration("took", time.Since(start)),
		)
	}
}

// cronLogger routes cron's internal logging to slog. cron reports every
// wake-up at info, so that goes to debug here.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{slog.String("error", err.Error())}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
