package main

import (
	"fmt"

	"github.com/TechharaInc/Tanaka/internal/counter/repository"
	"github.com/TechharaInc/Tanaka/internal/dispatch"
	"github.com/TechharaInc/Tanaka/pkg/kvs"
	"github.com/spf13/cobra"
)

var rankTop int

var rankCmd = &cobra.Command{
	Use:   "rank <guild-id>",
	Short: "Print a guild scoreboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadForCLI()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		client, err := kvs.Open(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		scores, err := repository.New(client).Top(cmd.Context(), args[0], rankTop)
		if err != nil {
			return err
		}
		if len(scores) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Messages.RankEmpty)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), dispatch.FormatRank(scores))
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVarP(&rankTop, "top", "k", 0, "Number of entries (default 10)")
}
