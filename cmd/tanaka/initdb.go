package main

import (
	"github.com/TechharaInc/Tanaka/internal/command"
	"github.com/TechharaInc/Tanaka/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the commands table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadForCLI()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dbCfg := db.FromConfig(cfg)
		dbCfg.Metrics = false
		conn, err := db.Open(dbCfg, log)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := command.EnsureSchema(cmd.Context(), conn); err != nil {
			return err
		}
		log.Info("schema ready", zap.String("dialect", conn.Dialector.Name()))
		return nil
	},
}
