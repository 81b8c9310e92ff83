package cache

import (
	"context"
	"log/slog"

	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/telemetry/metrics"
)

// Hooks wires store into the adapter cache contract. mode selects which
// half is wired ("read-write", "read-only", "write-only"); anything else
// disables caching. collector may be nil.
//
// Store errors are returned to the pipeline, which logs them and carries on
// as if the cache were absent.
func Hooks(store Store, mode string, collector *metrics.Collector) providers.CacheHooks {
	if store == nil {
		return providers.CacheHooks{}
	}

	name := store.Name()

	get := func(ctx context.Context, key string) ([]string, bool, error) {
		generations, ok, err := store.Get(ctx, key)
		switch {
		case err != nil:
			collector.RecordCacheError(name, "get")
		case ok:
			collector.RecordCacheHit(name)
		default:
			collector.RecordCacheMiss(name)
		}
		return generations, ok, err
	}

	set := func(ctx context.Context, key string, generations []string) error {
		if err := store.Set(ctx, key, generations); err != nil {
			collector.RecordCacheError(name, "set")
			return err
		}
		if stats, err := store.Stats(ctx); err == nil {
			collector.UpdateCacheSize(name, stats.Entries)
		}
		return nil
	}

	if m, ok := store.(*MemoryStore); ok {
		m.mu.Lock()
		m.onEvict = func(n int) { collector.RecordCacheEviction(name, n) }
		m.mu.Unlock()
	}

	switch providers.CacheMode(mode) {
	case providers.CacheReadWrite:
		return providers.CacheHooks{Get: get, Set: set}
	case providers.CacheReadOnly:
		return providers.CacheHooks{Get: get}
	case providers.CacheWriteOnly:
		return providers.CacheHooks{Set: set}
	default:
		slog.Debug("response cache disabled", "mode", mode)
		return providers.CacheHooks{}
	}
}

// Pruner adapts a Store to the retention scheduler and records evictions.
type Pruner struct {
	Store     Store
	Collector *metrics.Collector
}

// Name implements retention.Target.
func (p Pruner) Name() string { return "cache." + p.Store.Name() }

// Prune implements retention.Target.
func (p Pruner) Prune(ctx context.Context) (int, error) {
	n, err := p.Store.Prune(ctx)
	if err != nil {
		return 0, err
	}
	p.Collector.RecordCacheEviction(p.Store.Name(), n)
	return n, nil
}
