// Package transport defines the chat-platform boundary: outbound messages to
// a destination and inbound messages handed to the command layer.
//
// THE TWO DIRECTIONS:
//
//	outbound  announce / bot ─► Sender.SendMessage ─► platform
//	inbound   platform ─► Listen loop ─► Handler.HandleMessage ─► bot
//
// Only the telegram subpackage knows about the Bot API. Everything above it
// works with Message, Format and these interfaces, and tests substitute a
// recording Sender.
package transport

import (
	"context"
	"strings"
)

// Format tells the platform how to render a message body.
type Format string

const (
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
)

// markdownEscaper prefixes the legacy Markdown control characters with a
// backslash, the same set tgbotapi.EscapeText escapes for ModeMarkdown.
var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown makes s safe to place outside an entity in a FormatMarkdown
// message. Text inside *bold* or `code` cannot be escaped, so untrusted
// values must not go there.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Sender delivers one message to one destination. Failures are per call;
// callers broadcasting to several destinations handle each independently.
type Sender interface {
	SendMessage(ctx context.Context, destinationID int64, text string, format Format) error
}

// Message is an inbound chat message.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
	// Command is the bot command without the leading slash or @botname
	// suffix, empty for plain messages.
	Command string
	Args    string
}

// Handler consumes inbound messages.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message)

func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) {
	f(ctx, msg)
}
