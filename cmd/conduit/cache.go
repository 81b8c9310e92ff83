package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/conduit/pkg/cache"
	"mercator-hq/conduit/pkg/cli"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show response cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmtr, _, err := formatter()
		if err != nil {
			return err
		}
		cfg := configs.Config().Cache
		if cfg.Backend != "sqlite" {
			return cli.NewUsageError("cache.backend", "statistics need a persistent backend (sqlite); the memory cache lives only for one process")
		}
		store, err := cache.Open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return fmtr.FormatTo(cmd.OutOrStdout(), cli.Table{
			Headers: []string{"backend", "mode", "enabled", "entries", "expired", "ttl"},
			Rows: [][]string{{
				stats.Backend,
				cfg.Mode,
				strconv.FormatBool(cfg.Enabled),
				strconv.Itoa(stats.Entries),
				strconv.Itoa(stats.Expired),
				cfg.TTL.String(),
			}},
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Config().Cache
		if cfg.Backend != "sqlite" {
			return cli.NewUsageError("cache.backend", "pruning needs a persistent backend (sqlite)")
		}
		store, err := cache.Open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := cache.Pruner{Store: store}.Prune(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired cache entries\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd)
}
