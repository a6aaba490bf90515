package service

import (
	"context"
	"fmt"

	"github.com/TechharaInc/Tanaka/internal/command/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

// Service is the gorm-backed Command Store. Each call borrows one pooled
// connection for its own duration.
type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Store {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("command.store"),
		repo: p.Repo,
	}
}

func (s *Service) Insert(ctx context.Context, guildID, name, response, author string) error {
	if err := validateKey(guildID, name); err != nil {
		return err
	}

	record := &domain.Command{
		GuildID:   guildID,
		Name:      name,
		Response:  response,
		CreatedBy: author,
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return fmt.Errorf("%w: insert: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *Service) Lookup(ctx context.Context, guildID, name string) ([]domain.Command, error) {
	if err := validateKey(guildID, name); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByName(ctx, s.db, guildID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup: %v", domain.ErrStorage, err)
	}
	return items, nil
}

func (s *Service) Delete(ctx context.Context, guildID, name string) (int64, error) {
	if err := validateKey(guildID, name); err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteByName(ctx, s.db, guildID, name)
	if err != nil {
		return 0, fmt.Errorf("%w: delete: %v", domain.ErrStorage, err)
	}
	return deleted, nil
}

func validateKey(guildID, name string) error {
	if guildID == "" {
		return domain.ErrInvalidGuild
	}
	if name == "" {
		return domain.ErrInvalidName
	}
	return nil
}
