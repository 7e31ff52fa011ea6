// Package service contains the business logic layer of the bot.
//
//	Chat command / admin API → Service (rules) → Repository (SQLite)
//
// Services accept repository interfaces, never concrete stores, and know
// nothing about Telegram or HTTP. They return apperror values that the
// outer layers translate into replies or status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/repository"
)

const (
	DefaultLeaderboardLimit = 10 // what /leaderboard shows
	MaxLeaderboardLimit     = 100
)

// DefaultLinkPrefixes are the accepted proof-link sources when none are configured.
var DefaultLinkPrefixes = []string{"https://github.com"}

// SubmissionResult is what a successful submission reports back to the user.
type SubmissionResult struct {
	Streak    int             `json:"streak"`
	Milestone model.Milestone `json:"milestone,omitempty"`
}

// StreakService records submissions and derives consecutive-day streaks.
type StreakService struct {
	repo     repository.SubmissionRepository
	prefixes []string
	logger   *slog.Logger

	// locks serialises RecordSubmission per user; the store's uniqueness
	// constraint still backs this up across processes.
	locks sync.Map // map[int64]*sync.Mutex
}

// NewStreakService creates a StreakService. An empty prefixes list falls back
// to DefaultLinkPrefixes.
func NewStreakService(repo repository.SubmissionRepository, prefixes []string, logger *slog.Logger) *StreakService {
	if len(prefixes) == 0 {
		prefixes = DefaultLinkPrefixes
	}
	return &StreakService{
		repo:     repo,
		prefixes: prefixes,
		logger:   logger,
	}
}

// RecordSubmission validates proofLink, computes the streak for today (UTC
// calendar day) and appends the submission.
//
// Streak rules, relative to the user's most recent submission:
//   - none            → 1
//   - same day        → DuplicateSubmission, nothing written
//   - the day before  → previous streak + 1
//   - anything else   → 1 (gap, or a latest row dated after today)
func (s *StreakService) RecordSubmission(ctx context.Context, userID int64, username, proofLink string, today time.Time) (*SubmissionResult, error) {
	proofLink = strings.TrimSpace(proofLink)
	if !s.acceptedLink(proofLink) {
		return nil, apperror.InvalidLink(proofLink)
	}

	today = model.DayOf(today)
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	unlock := s.lockUser(userID)
	defer unlock()

	prev, err := s.repo.LatestSubmission(ctx, userID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		s.logger.Error("failed to read latest submission",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording submission: %w", err)
	}

	streak := 1
	if prev != nil {
		prevDay := model.DayOf(prev.Date)
		switch {
		case prevDay.Equal(today):
			return nil, apperror.DuplicateSubmission(userID, today.Format(model.DateLayout))
		case prevDay.Equal(today.AddDate(0, 0, -1)):
			streak = prev.Streak + 1
		}
	}

	sub := &model.Submission{
		UserID:    userID,
		Username:  username,
		Date:      today,
		Streak:    streak,
		ProofLink: proofLink,
	}
	if err := s.repo.InsertSubmission(ctx, sub); err != nil {
		if errors.Is(err, apperror.ErrDuplicateSubmission) {
			return nil, err
		}
		s.logger.Error("failed to insert submission",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording submission: %w", err)
	}

	// The row is committed at this point; a failed handle refresh only
	// leaves older rows with the previous name.
	if prev != nil && username != "" && prev.Username != username {
		if err := s.repo.UpdateUsername(ctx, userID, username); err != nil {
			s.logger.Warn("failed to refresh username",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("submission recorded",
		slog.Int64("user_id", userID),
		slog.String("date", today.Format(model.DateLayout)),
		slog.Int("streak", streak),
	)

	return &SubmissionResult{
		Streak:    streak,
		Milestone: model.MilestoneFor(streak),
	}, nil
}

// CurrentStreak returns the streak stored on the user's most recent row.
// Returns apperror.ErrNotFound if the user never submitted.
func (s *StreakService) CurrentStreak(ctx context.Context, userID int64) (int, error) {
	latest, err := s.repo.LatestSubmission(ctx, userID)
	if err != nil {
		return 0, err
	}
	return latest.Streak, nil
}

// TopStreaks returns the leaderboard: at most limit users by best streak,
// capped at MaxLeaderboardLimit. A limit of zero or less yields an empty list.
func (s *StreakService) TopStreaks(ctx context.Context, limit int) ([]model.StreakEntry, error) {
	if limit <= 0 {
		return []model.StreakEntry{}, nil
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	entries, err := s.repo.TopStreaks(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list top streaks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing top streaks: %w", err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *StreakService) acceptedLink(link string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(link, p) {
			return true
		}
	}
	return false
}

func (s *StreakService) lockUser(userID int64) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
