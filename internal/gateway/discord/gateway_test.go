package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/TechharaInc/Tanaka/internal/config"
	"github.com/TechharaInc/Tanaka/internal/dispatch"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRest struct {
	sent    []string
	reacted []string
	err     error
}

func (f *fakeRest) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, channelID+":"+content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeRest) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	if f.err != nil {
		return f.err
	}
	f.reacted = append(f.reacted, messageID+":"+emojiID)
	return nil
}

func TestGatewayDelivers(t *testing.T) {
	rest := &fakeRest{}
	g := &gateway{rest: rest}
	msg := dispatch.Message{ID: "m1", ChannelID: "c1", GuildID: "G1"}

	require.NoError(t, g.Reply(context.Background(), msg, "hello"))
	require.NoError(t, g.React(context.Background(), msg, "✅"))
	assert.Equal(t, []string{"c1:hello"}, rest.sent)
	assert.Equal(t, []string{"m1:✅"}, rest.reacted)
}

func TestGatewayWrapsTransportErrors(t *testing.T) {
	rest := &fakeRest{err: errors.New("HTTP 403 Forbidden")}
	g := &gateway{rest: rest}
	msg := dispatch.Message{ID: "m1", ChannelID: "c1"}

	assert.ErrorIs(t, g.Reply(context.Background(), msg, "hello"), dispatch.ErrTransport)
	assert.ErrorIs(t, g.React(context.Background(), msg, "❌"), dispatch.ErrTransport)
}

func TestToMessage(t *testing.T) {
	event := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "G1",
		Content:   "!add cat",
		Author:    &discordgo.User{ID: "u1", Bot: false},
		Attachments: []*discordgo.MessageAttachment{
			{URL: "https://cdn.example/cat.png"},
			nil,
			{URL: ""},
		},
	}}

	assert.Equal(t, dispatch.Message{
		ID:          "m1",
		ChannelID:   "c1",
		GuildID:     "G1",
		AuthorID:    "u1",
		Content:     "!add cat",
		Attachments: []string{"https://cdn.example/cat.png"},
	}, toMessage(event))

	dm := toMessage(&discordgo.MessageCreate{Message: &discordgo.Message{
		Content: "!rank",
		Author:  &discordgo.User{ID: "bot", Bot: true},
	}})
	assert.Empty(t, dm.GuildID)
	assert.True(t, dm.AuthorBot)

	assert.Equal(t, dispatch.Message{}, toMessage(nil))
}

func TestNewSessionConfiguresIntents(t *testing.T) {
	session, err := NewSession(config.Config{DiscordToken: "token"})
	require.NoError(t, err)
	assert.Equal(t, "Bot token", session.Identify.Token)
	assert.Equal(t, intents, session.Identify.Intents)
	assert.True(t, session.Identify.Intents&discordgo.IntentMessageContent != 0)
}
