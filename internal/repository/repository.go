package repository

import (
	"context"

	"github.com/sakif/challenge-bot/internal/model"
)

// SubmissionRepository stores the append-only submission history.
type SubmissionRepository interface {
	// LatestSubmission returns the user's most recent row by date, or an
	// apperror.ErrNotFound error when the user never submitted.
	LatestSubmission(ctx context.Context, userID int64) (*model.Submission, error)
	// InsertSubmission appends a row. It returns apperror.ErrDuplicateSubmission
	// when a row for (UserID, Date) already exists.
	InsertSubmission(ctx context.Context, sub *model.Submission) error
	// UpdateUsername rewrites the display handle on every row of the user.
	UpdateUsername(ctx context.Context, userID int64, username string) error
	// TopStreaks returns up to limit users ordered by their best streak.
	TopStreaks(ctx context.Context, limit int) ([]model.StreakEntry, error)
}

// ChallengeRepository caches resolved challenge days.
type ChallengeRepository interface {
	// GetChallengeDay returns an apperror.ErrNotFound error for uncached days.
	GetChallengeDay(ctx context.Context, day int) (*model.ChallengeDay, error)
	// PutChallengeDay inserts the day if absent; an existing row is kept as is.
	PutChallengeDay(ctx context.Context, challenge *model.ChallengeDay) error
}
