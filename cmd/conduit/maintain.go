package main

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/conduit/pkg/cache"
	"mercator-hq/conduit/pkg/cli"
	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/retention"
	"mercator-hq/conduit/pkg/telemetry/metrics"
)

var maintainOnce bool

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Prune persistent stores on their schedules",
	Long: `Run the retention scheduler for the SQLite response cache and the
SQLite capture store, and reload the configuration when the file changes.

Schedules come from cache.prune_schedule and replay.retention.prune_schedule.
The command runs until interrupted; --once prunes every store immediately and
exits.

Examples:
  conduit maintain
  conduit maintain --once`,
	Args: cobra.NoArgs,
	RunE: runMaintain,
}

func init() {
	rootCmd.AddCommand(maintainCmd)
	maintainCmd.Flags().BoolVar(&maintainOnce, "once", false, "prune once and exit")
}

func runMaintain(cmd *cobra.Command, args []string) error {
	cfg := configs.Config()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	}

	scheduler := retention.NewScheduler()
	var closers []func() error
	defer func() {
		for _, c := range slices.Backward(closers) {
			if err := c(); err != nil {
				slog.Warn("failed to close store", "error", err)
			}
		}
	}()

	if cfg.Cache.Backend == "sqlite" {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		closers = append(closers, store.Close)
		if err := scheduler.Add(cfg.Cache.PruneSchedule, cache.Pruner{Store: store, Collector: collector}); err != nil {
			return err
		}
	}
	if cfg.Replay.Backend == "sqlite" {
		store, err := openReplayStore()
		if err != nil {
			return fmt.Errorf("failed to open capture store: %w", err)
		}
		closers = append(closers, store.Close)
		if err := scheduler.Add(cfg.Replay.Retention.PruneSchedule, store); err != nil {
			return err
		}
	}
	if len(closers) == 0 {
		return cli.NewUsageError("config", "no persistent store configured (set cache.backend or replay.backend to sqlite)")
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if maintainOnce {
		results, err := scheduler.RunOnce(ctx)
		fmtr, _, ferr := formatter()
		if ferr != nil {
			return ferr
		}
		table := cli.Table{Headers: []string{"target", "pruned"}}
		for _, name := range slices.Sorted(maps.Keys(results)) {
			table.Rows = append(table.Rows, []string{name, strconv.Itoa(results[name])})
		}
		if ferr := fmtr.FormatTo(cmd.OutOrStdout(), table); ferr != nil {
			return ferr
		}
		return errors.Join(err, writeTextfile(collector))
	}

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	watcher, err := config.NewFileWatcher(configs, 0)
	if err != nil {
		return err
	}
	configs.Subscribe(func(c *config.Config) {
		slog.Info("configuration reloaded; schedules apply on next start",
			"cache_schedule", c.Cache.PruneSchedule,
			"replay_schedule", c.Replay.Retention.PruneSchedule,
		)
	})

	if err := watcher.Watch(ctx); err != nil {
		return err
	}
	return writeTextfile(collector)
}

func writeTextfile(c *metrics.Collector) error {
	if err := c.WriteTextfile(); err != nil && !errors.Is(err, metrics.ErrNoTextfile) {
		return err
	}
	return nil
}
