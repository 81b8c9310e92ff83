package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/conduit/pkg/cli"
	"mercator-hq/conduit/pkg/replay"
)

var replayFlags struct {
	provider string
	since    time.Duration
	limit    int
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Browse captured provider traffic",
	Long: `Browse raw requests and responses captured for providers with debug
enabled. Requires replay.backend: sqlite in the configuration.

Examples:
  conduit replay list --provider openai --since 1h
  conduit replay show 5f0c6a1e-...
  conduit replay prune`,
}

var replayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captures, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmtr, _, err := formatter()
		if err != nil {
			return err
		}
		store, err := openReplayStore()
		if err != nil {
			return err
		}
		defer store.Close()

		filter := replay.Filter{Provider: replayFlags.provider, Limit: replayFlags.limit}
		if replayFlags.since > 0 {
			filter.Since = time.Now().Add(-replayFlags.since)
		}
		captures, err := store.List(cmd.Context(), filter)
		if err != nil {
			return err
		}

		table := cli.Table{Headers: []string{"id", "started", "provider", "model", "stream", "status", "payloads", "duration", "error"}}
		for _, c := range captures {
			table.Rows = append(table.Rows, []string{
				c.ID,
				c.StartedAt.Local().Format(time.DateTime),
				c.Provider,
				c.Model,
				strconv.FormatBool(c.Stream),
				strconv.Itoa(c.StatusCode),
				strconv.Itoa(len(c.Payloads)),
				c.Duration().Round(time.Millisecond).String(),
				c.Error,
			})
		}
		return fmtr.FormatTo(cmd.OutOrStdout(), table)
	},
}

var replayShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one capture in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openReplayStore()
		if err != nil {
			return err
		}
		defer store.Close()

		c, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

var replayPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete captures older than the retention period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openReplayStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d captures\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.AddCommand(replayListCmd, replayShowCmd, replayPruneCmd)

	replayListCmd.Flags().StringVarP(&replayFlags.provider, "provider", "p", "", "only captures for this provider")
	replayListCmd.Flags().DurationVar(&replayFlags.since, "since", 0, "only captures newer than this (e.g. 1h, 30m)")
	replayListCmd.Flags().IntVarP(&replayFlags.limit, "limit", "l", 50, "maximum number of captures")
}

// openReplayStore opens the capture database named in the configuration.
func openReplayStore() (*replay.SQLiteStore, error) {
	cfg := configs.Config().Replay
	if cfg.Backend != "sqlite" {
		return nil, cli.NewUsageError("replay.backend", fmt.Sprintf("captures are only browsable with the sqlite backend (configured: %q)", cfg.Backend))
	}
	return replay.NewSQLiteStore(replay.SQLiteConfig{
		Path:          cfg.SQLite.Path,
		WALMode:       cfg.SQLite.WALMode,
		BusyTimeout:   cfg.SQLite.BusyTimeout,
		RetentionDays: cfg.Retention.Days,
	})
}
