package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	commanddomain "github.com/TechharaInc/Tanaka/internal/command/domain"
	counterdomain "github.com/TechharaInc/Tanaka/internal/counter/domain"
	"github.com/TechharaInc/Tanaka/internal/mutator/domain"
	"github.com/TechharaInc/Tanaka/internal/observability/metrics"
	"github.com/TechharaInc/Tanaka/pkg/log/ctxlogger"
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
}

func New(p Params) domain.Service {
	return &Service{
		commands: p.Commands,
		counters: p.Counters,
		log:      p.Log.Named("mutator"),
		metrics:  p.Metrics,
	}
}

func (s *Service) Add(ctx context.Context, guildID, author, name, response string) (err error) {
	defer func() { s.record(ctx, domain.VerbAdd, err) }()

	if strings.TrimSpace(name) == "" || strings.TrimSpace(response) == "" {
		return fmt.Errorf("%w: add needs a name and a response", domain.ErrInvalidArgs)
	}

	if err := s.commands.Insert(ctx, guildID, name, response, author); err != nil {
		ctxlogger.WithContext(ctx, s.log).Error("add command failed",
			zap.String("command", name),
			zap.Error(err),
		)
		return err
	}

	ctxlogger.WithContext(ctx, s.log).Info("command added",
		zap.String("command", name),
		zap.String("author", author),
	)
	return nil
}

func (s *Service) Remove(ctx context.Context, guildID, name string) (err error) {
	defer func() { s.record(ctx, domain.VerbRemove, err) }()

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: remove needs a name", domain.ErrInvalidArgs)
	}
	log := ctxlogger.WithContext(ctx, s.log).With(zap.String("command", name))

	// Score first, then rows.
	if err := s.counters.Forget(ctx, guildID, name); err != nil {
		log.Warn("score purge failed", zap.Error(err))
		s.metrics.RecordCounterError(ctx, "forget")
	}

	deleted, err := s.commands.Delete(ctx, guildID, name)
	if err != nil {
		log.Error("remove command failed", zap.Error(err))
		return err
	}

	log.Info("command removed", zap.Int64("rows", deleted))
	return nil
}

func (s *Service) AliasAdd(ctx context.Context, guildID, src, dst string) (err error) {
	defer func() { s.record(ctx, domain.VerbAliasAdd, err) }()

	if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
		return fmt.Errorf("%w: alias add needs a source and a target", domain.ErrInvalidArgs)
	}

	if err := s.counters.AliasSet(ctx, guildID, src, dst); err != nil {
		ctxlogger.WithContext(ctx, s.log).Error("alias add failed",
			zap.String("alias", src),
			zap.String("alias_target", dst),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) AliasRemove(ctx context.Context, guildID, src string) (err error) {
	defer func() { s.record(ctx, domain.VerbAliasRemove, err) }()

	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("%w: alias remove needs a source", domain.ErrInvalidArgs)
	}

	if err := s.counters.AliasDelete(ctx, guildID, src); err != nil {
		ctxlogger.WithContext(ctx, s.log).Error("alias remove failed",
			zap.String("alias", src),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, verb string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, domain.ErrInvalidArgs):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.metrics.RecordMutation(ctx, verb, outcome)
}
