package main

import (
	"github.com/TechharaInc/Tanaka/internal/command"
	"github.com/TechharaInc/Tanaka/internal/config"
	"github.com/TechharaInc/Tanaka/internal/counter"
	"github.com/TechharaInc/Tanaka/internal/dispatch"
	"github.com/TechharaInc/Tanaka/internal/gateway/discord"
	"github.com/TechharaInc/Tanaka/internal/mutator"
	"github.com/TechharaInc/Tanaka/internal/observability"
	"github.com/TechharaInc/Tanaka/internal/resolver"
	"github.com/TechharaInc/Tanaka/internal/server"
	"github.com/TechharaInc/Tanaka/pkg/db"
	"github.com/TechharaInc/Tanaka/pkg/kvs"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the chat gateway and serve commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp(config.Path(configPath))
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func newApp(path config.Path) *fx.App {
	return fx.New(
		appOptions(path),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
}

func appOptions(path config.Path) fx.Option {
	return fx.Options(
		fx.Supply(path),

		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		kvs.Module,

		// Stores and services
		command.Module,
		counter.Module,
		resolver.Module,
		mutator.Module,

		// Surfaces
		dispatch.Module,
		discord.Module,
		server.Module,
	)
}
