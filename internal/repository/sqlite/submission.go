package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/repository"
)

// compile-time check that *DB implements repository.SubmissionRepository
var _ repository.SubmissionRepository = (*DB)(nil)

// MaxTopStreaks caps one leaderboard query.
const MaxTopStreaks = 100

// LatestSubmission returns the user's most recent submission by date.
func (db *DB) LatestSubmission(ctx context.Context, userID int64) (*model.Submission, error) {
	var (
		s        model.Submission
		username sql.NullString
		date     string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, username, submission_date, streak, proof_link, created_at
		 FROM submissions
		 WHERE user_id = ?
		 ORDER BY submission_date DESC
		 LIMIT 1`,
		userID,
	).Scan(&s.ID, &s.UserID, &username, &date, &s.Streak, &s.ProofLink, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("submission for user", strconv.FormatInt(userID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting latest submission for user %d: %w", userID, err)
	}

	s.Date, err = time.ParseInLocation(model.DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parsing submission date %q: %w", date, err)
	}
	s.Username = username.String

	return &s, nil
}

// InsertSubmission appends a submission row.
//
// ON CONFLICT DO NOTHING turns the UNIQUE (user_id, submission_date)
// violation into zero affected rows, which is reported as a duplicate. Two
// racing inserts for the same user and day therefore end with exactly one
// row and one DuplicateSubmission error.
func (db *DB) InsertSubmission(ctx context.Context, sub *model.Submission) error {
	sub.ID = xid.New().String()
	sub.Date = model.DayOf(sub.Date)
	sub.CreatedAt = time.Now().UTC()
	date := sub.Date.Format(model.DateLayout)

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO submissions (id, user_id, username, submission_date, streak, proof_link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, submission_date) DO NOTHING`,
		sub.ID,
		sub.UserID,
		nullString(sub.Username),
		date,
		sub.Streak,
		sub.ProofLink,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting submission for user %d: %w", sub.UserID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.DuplicateSubmission(sub.UserID, date)
	}

	return nil
}

// UpdateUsername refreshes the stored handle on all of the user's rows.
// Streak values are untouched.
func (db *DB) UpdateUsername(ctx context.Context, userID int64, username string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE submissions SET username = ? WHERE user_id = ?`,
		nullString(username),
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating username for user %d: %w", userID, err)
	}
	return nil
}

// TopStreaks returns one row per user ordered by the best streak that user
// ever reached. Ties keep the order in which users first submitted. A limit
// of zero or less returns no rows.
func (db *DB) TopStreaks(ctx context.Context, limit int) ([]model.StreakEntry, error) {
	if limit <= 0 {
		return []model.StreakEntry{}, nil
	}
	if limit > MaxTopStreaks {
		limit = MaxTopStreaks
	}

	// The correlated subquery picks the handle from the user's latest row.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.user_id,
		        MAX(s.streak) AS max_streak,
		        (SELECT l.username FROM submissions l
		          WHERE l.user_id = s.user_id
		          ORDER BY l.submission_date DESC LIMIT 1) AS username
		 FROM submissions s
		 GROUP BY s.user_id
		 ORDER BY max_streak DESC, MIN(s.rowid) ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing top streaks: %w", err)
	}
	defer rows.Close()

	entries := make([]model.StreakEntry, 0, limit)
	for rows.Next() {
		var (
			e        model.StreakEntry
			username sql.NullString
		)
		if err := rows.Scan(&e.UserID, &e.MaxStreak, &username); err != nil {
			return nil, fmt.Errorf("sqlite: scanning streak row: %w", err)
		}
		e.DisplayName = displayName(e.UserID, username.String)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating streak rows: %w", err)
	}

	return entries, nil
}

func displayName(userID int64, username string) string {
	if username != "" {
		return "@" + username
	}
	return fmt.Sprintf("User %d", userID)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
