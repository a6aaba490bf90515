package command

import (
	"context"

	"github.com/TechharaInc/Tanaka/internal/command/repository"
	"github.com/TechharaInc/Tanaka/internal/command/service"
	"github.com/TechharaInc/Tanaka/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("command.store",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(autoMigrate),
)

func autoMigrate(lc fx.Lifecycle, cfg config.Config, db *gorm.DB) {
	if !cfg.DB.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureSchema(ctx, db)
		},
	})
}
