package discord

import (
	"context"
	"fmt"

	"github.com/TechharaInc/Tanaka/internal/dispatch"
	"github.com/bwmarrin/discordgo"
)

// restClient is the subset of *discordgo.Session the gateway writes through.
type restClient interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

type gateway struct {
	rest restClient
}

// NewGateway returns a dispatch.Gateway that posts through the Discord REST API.
func NewGateway(session *discordgo.Session) dispatch.Gateway {
	return &gateway{rest: session}
}

func (g *gateway) Reply(ctx context.Context, msg dispatch.Message, text string) error {
	if _, err := g.rest.ChannelMessageSend(msg.ChannelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: send: %v", dispatch.ErrTransport, err)
	}
	return nil
}

func (g *gateway) React(ctx context.Context, msg dispatch.Message, glyph string) error {
	if err := g.rest.MessageReactionAdd(msg.ChannelID, msg.ID, glyph, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: react: %v", dispatch.ErrTransport, err)
	}
	return nil
}

// toMessage converts a gateway event into the adapter's view of it.
func toMessage(m *discordgo.MessageCreate) dispatch.Message {
	if m == nil || m.Message == nil {
		return dispatch.Message{}
	}
	msg := dispatch.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		if a != nil && a.URL != "" {
			msg.Attachments = append(msg.Attachments, a.URL)
		}
	}
	return msg
}
