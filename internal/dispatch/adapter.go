package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/TechharaInc/Tanaka/internal/config"
	counterdomain "github.com/TechharaInc/Tanaka/internal/counter/domain"
	mutatordomain "github.com/TechharaInc/Tanaka/internal/mutator/domain"
	"github.com/TechharaInc/Tanaka/internal/observability/metrics"
	resolverdomain "github.com/TechharaInc/Tanaka/internal/resolver/domain"
	"github.com/TechharaInc/Tanaka/pkg/log/ctxlogger"
	"github.com/TechharaInc/Tanaka/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Ranker reads the scoreboard.
type Ranker interface {
	Top(ctx context.Context, guildID string, k int) ([]counterdomain.Score, error)
}

type Params struct {
	fx.In

	Config   config.Config
	Gateway  Gateway
	Mutator  mutatordomain.Service
	Resolver resolverdomain.Service
	Ranker   counterdomain.Store
	Log      *zap.Logger
	Metrics  *metrics.Metrics `optional:"true"`
}

// Adapter routes inbound messages to the mutator, the resolver or the
// scoreboard, and turns the outcome into a reply or a reaction.
type Adapter struct {
	prefix   string
	success  string
	failure  string
	messages config.MessagesConfig
	timeout  time.Duration

	gateway  Gateway
	mutator  mutatordomain.Service
	resolver resolverdomain.Service
	ranker   Ranker
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func New(p Params) *Adapter {
	return &Adapter{
		prefix:   p.Config.Prefix,
		success:  p.Config.ReactionSuccess,
		failure:  p.Config.ReactionFailure,
		messages: p.Config.Messages,
		timeout:  p.Config.Bot.HandlerTimeout,
		gateway:  p.Gateway,
		mutator:  p.Mutator,
		resolver: p.Resolver,
		ranker:   p.Ranker,
		log:      p.Log.Named("dispatch"),
		metrics:  p.Metrics,
	}
}

// Handle processes one inbound message. It never panics on handler errors and
// never returns them; every outcome is either delivered or logged.
func (a *Adapter) Handle(ctx context.Context, msg Message) {
	if msg.AuthorBot {
		return
	}
	inv, ok := Parse(a.prefix, msg.Content)
	if !ok {
		return
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	ctx, _ = correlation.EnsureCorrelationID(ctx)
	ctx = ctxlogger.ContextWithGuild(ctx, msg.GuildID)

	ctx, span := otel.Tracer("tanaka/dispatch").Start(ctx, "dispatch."+spanVerb(inv.Verb),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("guild_id", msg.GuildID),
			attribute.String("channel_id", msg.ChannelID),
		),
	)
	defer span.End()

	if msg.GuildID == "" {
		a.reply(ctx, msg, a.messages.DMNotAllowed)
		return
	}

	switch inv.Verb {
	case VerbAdd:
		a.handleAdd(ctx, msg, inv.Rest)
	case VerbRemove:
		name, _ := SplitToken(inv.Rest)
		a.finish(ctx, msg, a.mutator.Remove(ctx, msg.GuildID, name), a.messages.UsageRemove)
	case VerbRank:
		a.handleRank(ctx, msg)
	case VerbAlias:
		a.handleAlias(ctx, msg, inv.Rest)
	default:
		a.handleInvoke(ctx, msg, inv.Verb)
	}
}

func (a *Adapter) handleAdd(ctx context.Context, msg Message, rest string) {
	name, response := SplitToken(rest)
	if len(msg.Attachments) > 0 {
		response = msg.Attachments[0]
	}
	a.finish(ctx, msg, a.mutator.Add(ctx, msg.GuildID, msg.AuthorID, name, response), a.messages.UsageAdd)
}

func (a *Adapter) handleAlias(ctx context.Context, msg Message, rest string) {
	sub, rest := SplitToken(rest)
	src, rest := SplitToken(rest)

	var err error
	switch sub {
	case aliasAdd:
		dst, _ := SplitToken(rest)
		err = a.mutator.AliasAdd(ctx, msg.GuildID, src, dst)
	case aliasRemove:
		err = a.mutator.AliasRemove(ctx, msg.GuildID, src)
	default:
		err = mutatordomain.ErrInvalidArgs
	}
	a.finish(ctx, msg, err, a.messages.UsageAlias)
}

func (a *Adapter) handleRank(ctx context.Context, msg Message) {
	scores, err := a.ranker.Top(ctx, msg.GuildID, counterdomain.DefaultTop)
	if err != nil {
		ctxlogger.WithContext(ctx, a.log).Warn("rank lookup failed", zap.Error(err))
		a.metrics.RecordCounterError(ctx, "top")
		a.react(ctx, msg, a.failure)
		return
	}
	if len(scores) == 0 {
		a.reply(ctx, msg, a.messages.RankEmpty)
		return
	}
	a.reply(ctx, msg, FormatRank(scores))
}

func (a *Adapter) handleInvoke(ctx context.Context, msg Message, token string) {
	res, ok := a.resolver.Resolve(ctx, msg.GuildID, token)
	if !ok {
		return
	}
	if !a.reply(ctx, msg, res.Response) {
		return
	}
	a.resolver.Record(ctx, res)
}

// finish maps a mutation outcome to the user-visible signal.
func (a *Adapter) finish(ctx context.Context, msg Message, err error, usage string) {
	if errors.Is(err, mutatordomain.ErrInvalidArgs) {
		a.reply(ctx, msg, usage)
	}
	if err != nil {
		a.react(ctx, msg, a.failure)
		return
	}
	a.react(ctx, msg, a.success)
}

// reply sends text and falls back to a failure reaction when delivery fails.
func (a *Adapter) reply(ctx context.Context, msg Message, text string) bool {
	if text == "" {
		return false
	}
	err := a.gateway.Reply(ctx, msg, text)
	if err == nil {
		return true
	}
	ctxlogger.WithContext(ctx, a.log).Warn("send message failed",
		zap.String("channel_id", msg.ChannelID),
		zap.Error(err),
	)
	a.react(ctx, msg, a.failure)
	return false
}

func (a *Adapter) react(ctx context.Context, msg Message, glyph string) {
	if glyph == "" {
		return
	}
	if err := a.gateway.React(ctx, msg, glyph); err != nil {
		ctxlogger.WithContext(ctx, a.log).Warn("react failed",
			zap.String("message_id", msg.ID),
			zap.String("glyph", glyph),
			zap.Error(err),
		)
	}
}

// Span names stay low-cardinality: invocations share one name.
func spanVerb(verb string) string {
	switch verb {
	case VerbAdd, VerbRemove, VerbRank, VerbAlias:
		return verb
	default:
		return "invoke"
	}
}
