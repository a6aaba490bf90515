package service

import (
	"context"
	"math/rand/v2"

	commanddomain "github.com/TechharaInc/Tanaka/internal/command/domain"
	counterdomain "github.com/TechharaInc/Tanaka/internal/counter/domain"
	"github.com/TechharaInc/Tanaka/internal/observability/metrics"
	"github.com/TechharaInc/Tanaka/internal/resolver/domain"
	"github.com/TechharaInc/Tanaka/pkg/log/ctxlogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Commands commanddomain.Store
	Counters counterdomain.Store
	Log      *zap.Logger
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	commands commanddomain.Store
	counters counterdomain.Store
	log      *zap.Logger
	metrics  *metrics.Metrics

	// intn picks a variant index in [0, n).
	intn func(n int) int
}

func New(p Params) domain.Service {
	return &Service{
		commands: p.Commands,
		counters: p.Counters,
		log:      p.Log.Named("resolver"),
		metrics:  p.Metrics,
		intn:     rand.IntN,
	}
}

func (s *Service) Resolve(ctx context.Context, guildID, token string) (domain.Resolution, bool) {
	ctx, span := otel.Tracer("tanaka/resolver").Start(ctx, "resolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("command", token))

	log := ctxlogger.WithContext(ctx, s.log).With(zap.String("command", token))

	items, err := s.commands.Lookup(ctx, guildID, token)
	if err != nil {
		log.Error("command lookup failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		s.metrics.RecordResolution(ctx, metrics.OutcomeFailed)
		return domain.Resolution{}, false
	}
	if len(items) > 0 {
		return s.emit(ctx, span, guildID, token, items), true
	}

	dst, ok, err := s.counters.AliasGet(ctx, guildID, token)
	if err != nil {
		log.Warn("alias lookup failed", zap.Error(err))
		s.metrics.RecordCounterError(ctx, "alias_get")
	}
	if err != nil || !ok {
		s.metrics.RecordResolution(ctx, metrics.OutcomeEmpty)
		return domain.Resolution{}, false
	}

	// One hop only: dst is looked up directly and never re-aliased.
	items, err = s.commands.Lookup(ctx, guildID, dst)
	if err != nil {
		log.Warn("alias target lookup failed", zap.String("alias_target", dst), zap.Error(err))
	}
	if err != nil || len(items) == 0 {
		log.Debug("dangling alias", zap.String("alias_target", dst))
		s.metrics.RecordResolution(ctx, metrics.OutcomeEmpty)
		return domain.Resolution{}, false
	}
	span.SetAttributes(attribute.String("alias_target", dst))
	return s.emit(ctx, span, guildID, dst, items), true
}

func (s *Service) emit(ctx context.Context, span trace.Span, guildID, name string, items []commanddomain.Command) domain.Resolution {
	picked := items[s.intn(len(items))]
	span.SetAttributes(attribute.Int("variants", len(items)))
	s.metrics.RecordResolution(ctx, metrics.OutcomeReplied)
	return domain.Resolution{GuildID: guildID, Name: name, Response: picked.Response}
}

func (s *Service) Record(ctx context.Context, res domain.Resolution) {
	if res.GuildID == "" || res.Name == "" {
		return
	}
	if err := s.counters.Incr(ctx, res.GuildID, res.Name); err != nil {
		ctxlogger.WithContext(ctx, s.log).Warn("score increment failed",
			zap.String("command", res.Name),
			zap.Error(err),
		)
		s.metrics.RecordCounterError(ctx, "incr")
	}
}

func (s *Service) ResolveAndRecord(ctx context.Context, guildID, token string) (domain.Resolution, bool) {
	res, ok := s.Resolve(ctx, guildID, token)
	if ok {
		s.Record(ctx, res)
	}
	return res, ok
}
