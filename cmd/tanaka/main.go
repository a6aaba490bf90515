package main

import (
	"fmt"
	"os"

	"github.com/TechharaInc/Tanaka/internal/config"
	"github.com/TechharaInc/Tanaka/internal/observability"
	"github.com/TechharaInc/Tanaka/internal/observability/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tanaka",
	Short: "Per-guild custom response bot",
	Long: `tanaka replays registered responses when a guild member invokes a
command name, keeps a popularity scoreboard and supports aliases.

Run "tanaka serve" to connect to the chat gateway.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the TOML configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(rankCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadForCLI loads the configuration and a logger for one-shot subcommands.
func loadForCLI() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	obsCfg := observability.LoadConfig(cfg)
	log, err := logger.New(nil, logger.Config{
		ServiceName: obsCfg.ServiceName,
		Version:     obsCfg.Version,
		Level:       obsCfg.LogLevel,
		Format:      "console",
	})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
