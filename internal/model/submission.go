// Package model defines the data structures used throughout the application.
package model

import "time"

// DateLayout is the calendar-day format used for submission dates in storage
// and in messages.
const DateLayout = "2006-01-02"

// Submission is one accepted proof of work by a user on one calendar day (UTC).
//
// Streak is memoised at write time from the user's previous row and is never
// recomputed afterwards. The store guarantees at most one row per
// (UserID, Date).
type Submission struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"` // empty when the chat user has no handle
	Date      time.Time `json:"date"`               // midnight UTC
	Streak    int       `json:"streak"`
	ProofLink string    `json:"proofLink"`
	CreatedAt time.Time `json:"createdAt"`
}

// StreakEntry is one leaderboard row: a user and the best streak they ever reached.
type StreakEntry struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	MaxStreak   int    `json:"maxStreak"`
}

// Milestone marks streak values that deserve a celebratory reply.
type Milestone string

const (
	MilestoneNone       Milestone = ""
	MilestoneNovice     Milestone = "novice"
	MilestoneEnthusiast Milestone = "enthusiast"
	MilestoneMaster     Milestone = "master"
)

// MilestoneFor returns the milestone reached at exactly this streak value.
func MilestoneFor(streak int) Milestone {
	switch streak {
	case 5:
		return MilestoneNovice
	case 15:
		return MilestoneEnthusiast
	case 30:
		return MilestoneMaster
	default:
		return MilestoneNone
	}
}

// DayOf truncates t to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
