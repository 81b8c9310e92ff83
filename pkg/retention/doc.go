// Package retention schedules deletion of expired cache entries and debug
// captures.
//
//	s := retention.NewScheduler()
//	_ = s.Add(cfg.Cache.PruneSchedule, cache.Pruner{Store: store})
//	_ = s.Add(cfg.Replay.Retention.PruneSchedule, replayStore)
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//
// The conduit CLI runs RunOnce for "cache prune" and "replay prune" and the
// cron schedule under "conduit maintain".
package retention
