package announce

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/challenge"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/transport"
)

// ===========================================================================
// Fakes
// ===========================================================================

type sentMessage struct {
	chatID int64
	text   string
	format transport.Format
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool

	// when hold is set, each send signals entered and waits for hold to close
	hold    chan struct{}
	entered chan struct{}
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string, format transport.Format) error {
	if f.hold != nil {
		f.entered <- struct{}{}
		<-f.hold
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("Forbidden: bot was kicked from the group chat")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, format: format})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeResolver struct {
	mu    sync.Mutex
	days  map[int]model.ChallengeDay
	calls []int
}

func (f *fakeResolver) Resolve(_ context.Context, day int) challenge.Resolution {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, day)
	if c, ok := f.days[day]; ok {
		return challenge.Resolution{Source: challenge.SourceDataset, Challenge: c}
	}
	return challenge.Resolution{Source: challenge.SourceFallback, Challenge: challenge.Placeholder(day, calendarURL)}
}

// ===========================================================================
// Helpers
// ===========================================================================

const calendarURL = "https://example.com/calendar"

var startDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func at(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAnnouncer(resolver *fakeResolver, sender *fakeSender, now func() time.Time) *Announcer {
	a := NewAnnouncer(Config{
		Destinations:     []int64{-1001, -1002},
		StartDate:        startDate,
		TotalDays:        30,
		ChallengeURL:     calendarURL,
		ResourceVaultURL: "https://github.com/example/resources",
	}, resolver, sender, discardLogger())
	a.now = now
	return a
}

func day30WithSolution() map[int]model.ChallengeDay {
	return map[int]model.ChallengeDay{
		30: {
			Day:          30,
			ContractName: "FinalBoss.sol",
			YouTubeLink:  "https://youtu.be/final",
			SolutionLink: "https://github.com/example/solutions/day30",
		},
	}
}

// ===========================================================================
// Day index
// ===========================================================================

func TestCurrentDay(t *testing.T) {
	a := newTestAnnouncer(&fakeResolver{}, &fakeSender{}, time.Now)

	tests := []struct {
		now  string
		want int
	}{
		{"2025-04-01T00:00:00Z", 1},
		{"2025-04-01T23:59:59Z", 1},
		{"2025-04-02T00:00:00Z", 2},
		{"2025-04-30T23:55:00Z", 30},
		{"2025-05-01T00:00:00Z", 31},
		{"2025-03-31T23:59:00Z", 0},
		{"2025-04-02T01:00:00+05:00", 1}, // 2025-04-01T20:00Z
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CurrentDay(at(tt.now)()))
		})
	}
}

func TestOutsideWindow_NoBroadcast(t *testing.T) {
	for _, now := range []string{"2025-03-31T12:00:00Z", "2025-05-01T00:00:00Z"} {
		t.Run(now, func(t *testing.T) {
			resolver := &fakeResolver{}
			sender := &fakeSender{}
			a := newTestAnnouncer(resolver, sender, at(now))

			for _, action := range model.Actions {
				rep, err := a.Fire(context.Background(), action)
				require.NoError(t, err)
				assert.True(t, rep.Skipped, action)
			}

			assert.Empty(t, sender.messages())
			assert.Empty(t, resolver.calls)
		})
	}
}

// ===========================================================================
// Actions
// ===========================================================================

func TestFireChallengeReveal_FirstDay(t *testing.T) {
	resolver := &fakeResolver{days: map[int]model.ChallengeDay{
		1: {
			Day:                1,
			ContractName:       "ClickCounter.sol",
			Week:               "Week 1: Solidity Fundamentals",
			ExampleApplication: "A simple counter.",
			ConceptsTaught:     []string{"Basic Solidity syntax", "Variables (uint)"},
			LogicalProgression: "Foundational syntax.",
		},
	}}
	sender := &fakeSender{}
	a := newTestAnnouncer(resolver, sender, at("2025-04-01T00:00:00Z"))

	rep := a.FireChallengeReveal(context.Background())

	assert.Equal(t, Report{Action: model.ActionRevealChallenge, Day: 1, Delivered: 2}, rep)
	assert.Equal(t, []int{1}, resolver.calls)

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(-1001), msgs[0].chatID)
	assert.Equal(t, int64(-1002), msgs[1].chatID)

	text := msgs[0].text
	assert.Equal(t, transport.FormatMarkdown, msgs[0].format)
	assert.Contains(t, text, "*DAY 1 CHALLENGE IS LIVE!*")
	assert.Contains(t, text, "📅 Week 1: Solidity Fundamentals\n")
	assert.Contains(t, text, "*Today's Challenge:* ClickCounter.sol")
	assert.Contains(t, text, "A simple counter.")
	assert.Contains(t, text, "• Basic Solidity syntax\n• Variables (uint)\n")
	assert.Contains(t, text, "Foundational syntax.")
	assert.Contains(t, text, "("+calendarURL+")")
	assert.Contains(t, text, "/submit <GitHub_PR_link>")
}

func TestFireChallengeReveal_EscapesChallengeText(t *testing.T) {
	resolver := &fakeResolver{days: map[int]model.ChallengeDay{
		3: {
			Day:            3,
			Title:          "my_token *v2*",
			Description:    "Use `mapping` and [brackets].",
			ConceptsTaught: []string{"snake_case names"},
		},
	}}
	sender := &fakeSender{}
	a := newTestAnnouncer(resolver, sender, at("2025-04-03T00:00:00Z"))

	a.FireChallengeReveal(context.Background())

	text := sender.messages()[0].text
	assert.Contains(t, text, `*Today's Challenge:* my\_token \*v2\*`)
	assert.Contains(t, text, "Use \\`mapping\\` and \\[brackets].")
	assert.Contains(t, text, `• snake\_case names`)
}

func TestFireChallengeReveal_Placeholder(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAnnouncer(&fakeResolver{}, sender, at("2025-04-12T00:00:00Z"))

	rep := a.FireChallengeReveal(context.Background())

	assert.Equal(t, 12, rep.Day)
	msgs := sender.messages()
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].text, "*Today's Challenge:* Day 12 Challenge")
	assert.NotContains(t, msgs[0].text, "Concepts You'll Master")
}

func TestBroadcast_FailedDestinationIsIsolated(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{-1001: true}}
	a := newTestAnnouncer(&fakeResolver{}, sender, at("2025-04-03T21:00:00Z"))

	rep := a.FireReminder(context.Background())

	assert.Equal(t, 1, rep.Delivered)
	assert.Equal(t, 1, rep.Failed)
	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(-1002), msgs[0].chatID)
	assert.Contains(t, msgs[0].text, "FINAL COUNTDOWN: 3 HOURS LEFT!")
}

func TestBroadcast_NoDestinations(t *testing.T) {
	sender := &fakeSender{}
	a := NewAnnouncer(Config{StartDate: startDate, TotalDays: 30}, &fakeResolver{}, sender, discardLogger())
	a.now = at("2025-04-03T21:00:00Z")

	rep := a.FireReminder(context.Background())

	assert.False(t, rep.Skipped)
	assert.Zero(t, rep.Delivered)
	assert.Empty(t, sender.messages())
}

func TestFireSolutionReveal(t *testing.T) {
	tests := []struct {
		name     string
		days     map[int]model.ChallengeDay
		contains []string
	}{
		{
			name: "both links published",
			days: day30WithSolution(),
			contains: []string{
				"*SOLUTION REVEAL: DAY 30*",
				"*Challenge:* FinalBoss.sol",
				"(https://github.com/example/solutions/day30)",
				"(https://youtu.be/final)",
			},
		},
		{
			name:     "no links",
			days:     map[int]model.ChallengeDay{30: {Day: 30, ContractName: "FinalBoss.sol"}},
			contains: []string{"*DAY 30 SOLUTION UPDATE*", "not live yet"},
		},
		{
			name: "video still a placeholder",
			days: map[int]model.ChallengeDay{30: {
				Day:          30,
				YouTubeLink:  "[Link coming soon]",
				SolutionLink: "https://github.com/example/solutions/day30",
			}},
			contains: []string{"*DAY 30 SOLUTION UPDATE*"},
		},
		{
			name: "solution points at the calendar",
			days: map[int]model.ChallengeDay{30: {
				Day:          30,
				YouTubeLink:  "https://youtu.be/final",
				SolutionLink: calendarURL,
			}},
			contains: []string{"*DAY 30 SOLUTION UPDATE*"},
		},
		{
			name:     "unresolved day",
			contains: []string{"*DAY 30 SOLUTION UPDATE*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakeResolver{days: tt.days}
			sender := &fakeSender{}
			a := newTestAnnouncer(resolver, sender, at("2025-04-30T23:55:00Z"))

			rep := a.FireSolutionReveal(context.Background())

			assert.Equal(t, 30, rep.Day)
			assert.Equal(t, 2, rep.Delivered)
			assert.Equal(t, []int{30}, resolver.calls)

			msgs := sender.messages()
			require.Len(t, msgs, 2)
			for _, want := range tt.contains {
				assert.Contains(t, msgs[0].text, want)
			}
		})
	}
}

func TestFireResourcePromo(t *testing.T) {
	t.Run("first day", func(t *testing.T) {
		sender := &fakeSender{}
		a := newTestAnnouncer(&fakeResolver{}, sender, at("2025-04-01T09:30:00Z"))

		rep := a.FireResourcePromo(context.Background())

		assert.False(t, rep.Skipped)
		assert.Equal(t, 2, rep.Delivered)
		assert.Contains(t, sender.messages()[0].text, "(https://github.com/example/resources)")
	})

	t.Run("later days", func(t *testing.T) {
		sender := &fakeSender{}
		a := newTestAnnouncer(&fakeResolver{}, sender, at("2025-04-02T09:30:00Z"))

		rep := a.FireResourcePromo(context.Background())

		assert.True(t, rep.Skipped)
		assert.Equal(t, 2, rep.Day)
		assert.Empty(t, sender.messages())
	})
}

func TestFire_UnknownAction(t *testing.T) {
	a := newTestAnnouncer(&fakeResolver{}, &fakeSender{}, at("2025-04-02T00:00:00Z"))

	_, err := a.Fire(context.Background(), model.Action("dance"))

	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFire_SameActionDoesNotOverlap(t *testing.T) {
	sender := &fakeSender{
		hold:    make(chan struct{}),
		entered: make(chan struct{}, 8),
	}
	a := newTestAnnouncer(&fakeResolver{}, sender, at("2025-04-01T21:00:00Z"))

	first := make(chan Report, 1)
	go func() {
		rep, _ := a.Fire(context.Background(), model.ActionSendReminder)
		first <- rep
	}()
	<-sender.entered // the first reminder is mid-broadcast

	rep, err := a.Fire(context.Background(), model.ActionSendReminder)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Zero(t, rep.Delivered)

	close(sender.hold)
	assert.Equal(t, 2, (<-first).Delivered)
	assert.Len(t, sender.messages(), 2)

	// released once the first run finished
	rep, err = a.Fire(context.Background(), model.ActionSendReminder)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Delivered)
}

func TestFire_DifferentActionsMayOverlap(t *testing.T) {
	sender := &fakeSender{
		hold:    make(chan struct{}),
		entered: make(chan struct{}, 8),
	}
	a := newTestAnnouncer(&fakeResolver{}, sender, at("2025-04-01T21:00:00Z"))

	done := make(chan error, 2)
	go func() {
		_, err := a.Fire(context.Background(), model.ActionSendReminder)
		done <- err
	}()
	<-sender.entered

	go func() {
		_, err := a.Fire(context.Background(), model.ActionSendResourcePromo)
		done <- err
	}()
	<-sender.entered // the promo reached the sender while the reminder is still held

	close(sender.hold)
	require.NoError(t, <-done)
	require.NoError(t, <-done)
}
