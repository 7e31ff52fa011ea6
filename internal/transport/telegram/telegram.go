// Package telegram implements transport.Sender and the inbound update loop on
// the Telegram Bot API.
//
// RATE LIMITING:
// Telegram rejects bursts above roughly 30 messages per second per bot. A
// broadcast to many groups plus chat replies share one rate.Limiter, so
// SendMessage waits for a token (or for ctx) before every call.
//
// LONG POLLING:
// Listen asks for updates with a 60 second poll timeout and handles them one
// at a time, in the order Telegram delivers them.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/sakif/challenge-bot/internal/transport"
)

// pollTimeout is the long-poll duration in seconds.
const pollTimeout = 60

// compile-time check that *Bot implements transport.Sender
var _ transport.Sender = (*Bot)(nil)

type Bot struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New authenticates with token. Outbound sends are throttled to perSecond
// messages; zero or less disables throttling.
func New(token string, perSecond float64, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connecting bot: %w", err)
	}

	logger.Info("telegram bot authorized", slog.String("username", api.Self.UserName))

	return &Bot{
		api:     api,
		limiter: newLimiter(perSecond),
		logger:  logger,
	}, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// SendMessage waits for a send slot and delivers text to chatID.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, format transport.Format) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram: waiting to send to %d: %w", chatID, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode(format)
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: sending to %d: %w", chatID, err)
	}
	return nil
}

// Listen long-polls for updates and hands each message to h until ctx is
// cancelled. Messages are handled one at a time.
func (b *Bot) Listen(ctx context.Context, h transport.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("listening for telegram updates")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := toMessage(update)
			if !ok {
				continue
			}
			h.HandleMessage(ctx, msg)
		}
	}
}

// toMessage keeps text messages with a known sender and chat.
func toMessage(update tgbotapi.Update) (transport.Message, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return transport.Message{}, false
	}

	msg := transport.Message{
		ChatID:   m.Chat.ID,
		UserID:   m.From.ID,
		Username: m.From.UserName,
		Text:     m.Text,
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.Args = m.CommandArguments()
	}
	return msg, true
}

func parseMode(f transport.Format) string {
	if f == transport.FormatMarkdown {
		return tgbotapi.ModeMarkdown
	}
	return ""
}
