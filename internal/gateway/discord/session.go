package discord

import (
	"context"

	"github.com/TechharaInc/Tanaka/internal/config"
	"github.com/TechharaInc/Tanaka/internal/dispatch"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const intents = discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

// NewSession builds an unopened session. Events are delivered on their own
// goroutines.
func NewSession(cfg config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = intents
	session.SyncEvents = false
	return session, nil
}

type registerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Session   *discordgo.Session
	Adapter   *dispatch.Adapter
	Log       *zap.Logger
}

// register attaches the adapter to the session and ties the websocket to the
// fx lifecycle.
func register(p registerParams) {
	log := p.Log.Named("discord")
	base, cancel := context.WithCancel(context.Background())

	p.Session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		name := ""
		if r.User != nil {
			name = r.User.Username
		}
		log.Info("connected", zap.String("user", name), zap.Int("guilds", len(r.Guilds)))
	})
	p.Session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		p.Adapter.Handle(base, toMessage(m))
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("opening gateway session")
			return p.Session.Open()
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			log.Info("closing gateway session")
			return p.Session.Close()
		},
	})
}
