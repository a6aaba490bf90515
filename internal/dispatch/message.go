package dispatch

import (
	"context"
	"errors"
)

// Message is the platform-neutral view of an inbound chat message.
type Message struct {
	ID        string
	ChannelID string
	// GuildID is empty for direct messages.
	GuildID   string
	AuthorID  string
	AuthorBot bool
	Content   string
	// Attachments holds attachment URLs in message order.
	Attachments []string
}

// Gateway delivers output back to the chat platform. Implementations wrap
// their failures with ErrTransport.
type Gateway interface {
	Reply(ctx context.Context, msg Message, text string) error
	React(ctx context.Context, msg Message, glyph string) error
}

var ErrTransport = errors.New("transport")
