// Package bot turns inbound chat messages into replies.
//
// WHAT IS A COMMAND HERE?
// Telegram marks "/submit https://..." as a bot command; the transport layer
// strips the slash and any "@botname" suffix and hands over Command="submit"
// and Args="https://...". Commands maps each known command to one reply:
//
//	/start, /help   usage text
//	/submit <link>  record today's submission, reply with the streak
//	/streak         current streak
//	/leaderboard    top 10 best streaks
//	/chatid         the chat's ID, for configuring GROUP_CHAT_ID
//	gm, gm gm       a random greeting (plain text, not a command)
//
// Everything else is ignored so the bot stays quiet in busy groups.
//
// Commands knows the reply texts and nothing about storage: rejected links
// and repeat submissions arrive as apperror values from the streak service
// and are translated here.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/service"
	"github.com/sakif/challenge-bot/internal/transport"
)

const leaderboardSize = service.DefaultLeaderboardLimit

const helpText = "Welcome to the 30-Day Solidity Challenge by Web3 Compass!\n" +
	"Use /submit <github_pr_link> to submit your solution each day,\n" +
	"/streak to check your streak,\n" +
	"/chatid to get the current chat ID,\n" +
	"and /leaderboard to see the top participants."

var gmReplies = []string{
	"GM Builders! 🚀 Let's build something amazing today!",
	"GM! Ready to crush some Solidity code today? 💪",
	"GM fam! Another day, another smart contract! 🧠",
	"GM! Coffee + Solidity = Perfect morning! ☕",
	"GM! Let's keep that streak going! 🔥",
}

// Streaks is the part of *service.StreakService the commands use.
type Streaks interface {
	RecordSubmission(ctx context.Context, userID int64, username, proofLink string, today time.Time) (*service.SubmissionResult, error)
	CurrentStreak(ctx context.Context, userID int64) (int, error)
	TopStreaks(ctx context.Context, limit int) ([]model.StreakEntry, error)
}

// Commands answers /start, /submit, /streak, /leaderboard, /chatid and "gm".
// Every recognised command gets exactly one reply; other messages are ignored.
type Commands struct {
	streaks Streaks
	sender  transport.Sender
	now     func() time.Time
	pick    func(n int) int
	logger  *slog.Logger
}

// NewCommands creates the command handler. Replies go out through sender as
// plain text.
func NewCommands(streaks Streaks, sender transport.Sender, logger *slog.Logger) *Commands {
	return &Commands{
		streaks: streaks,
		sender:  sender,
		now:     time.Now,
		pick:    rand.IntN,
		logger:  logger,
	}
}

// HandleMessage implements transport.Handler.
func (c *Commands) HandleMessage(ctx context.Context, msg transport.Message) {
	text, ok := c.Reply(ctx, msg)
	if !ok {
		return
	}
	if err := c.sender.SendMessage(ctx, msg.ChatID, text, transport.FormatPlain); err != nil {
		c.logger.Error("failed to send reply",
			slog.Int64("chat_id", msg.ChatID),
			slog.String("command", msg.Command),
			slog.String("error", err.Error()),
		)
	}
}

// Reply computes the response to msg. ok is false when msg needs no reply.
func (c *Commands) Reply(ctx context.Context, msg transport.Message) (string, bool) {
	switch msg.Command {
	case "start", "help":
		return helpText, true
	case "submit":
		return c.submit(ctx, msg), true
	case "streak":
		return c.streak(ctx, msg), true
	case "leaderboard":
		return c.leaderboard(ctx), true
	case "chatid":
		return fmt.Sprintf("Chat ID: %d", msg.ChatID), true
	case "":
		return c.greeting(msg.Text)
	default:
		return "", false
	}
}

func (c *Commands) submit(ctx context.Context, msg transport.Message) string {
	args := strings.Fields(msg.Args)
	if len(args) == 0 {
		return "Please provide your GitHub PR link with the submission!\nFormat: /submit <PR_link>"
	}

	res, err := c.streaks.RecordSubmission(ctx, msg.UserID, msg.Username, args[0], c.now())
	switch {
	case errors.Is(err, apperror.ErrInvalidLink):
		return "Please provide a valid GitHub PR link!"
	case errors.Is(err, apperror.ErrDuplicateSubmission):
		return "You've already submitted today!"
	case err != nil:
		c.logger.Error("submission failed",
			slog.Int64("user_id", msg.UserID),
			slog.String("error", err.Error()),
		)
		return "Something went wrong while saving your submission. Please try again later."
	}

	if badge := badgeFor(res.Milestone); badge != "" {
		return fmt.Sprintf("🎉 PR submitted! Streak: %d days. You're a %s!", res.Streak, badge)
	}
	return fmt.Sprintf("PR submitted! Your streak is %d days.", res.Streak)
}

func (c *Commands) streak(ctx context.Context, msg transport.Message) string {
	n, err := c.streaks.CurrentStreak(ctx, msg.UserID)
	if errors.Is(err, apperror.ErrNotFound) {
		return "You haven't submitted any solutions yet."
	}
	if err != nil {
		c.logger.Error("failed to read streak",
			slog.Int64("user_id", msg.UserID),
			slog.String("error", err.Error()),
		)
		return "Couldn't look up your streak right now. Please try again later."
	}
	return fmt.Sprintf("Your current streak is %d days.", n)
}

func (c *Commands) leaderboard(ctx context.Context) string {
	entries, err := c.streaks.TopStreaks(ctx, leaderboardSize)
	if err != nil {
		return "Couldn't load the leaderboard right now. Please try again later."
	}
	if len(entries) == 0 {
		return "No submissions yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Top %d Streaks:\n", leaderboardSize)
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s: %d days\n", i+1, e.DisplayName, e.MaxStreak)
	}
	return b.String()
}

func (c *Commands) greeting(text string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "gm", "gm gm":
		return gmReplies[c.pick(len(gmReplies))], true
	default:
		return "", false
	}
}

func badgeFor(m model.Milestone) string {
	switch m {
	case model.MilestoneNovice:
		return "Solidity Novice"
	case model.MilestoneEnthusiast:
		return "Solidity Enthusiast"
	case model.MilestoneMaster:
		return "Solidity Master"
	default:
		return ""
	}
}
