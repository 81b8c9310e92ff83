// Package cache provides response cache stores and wires them into the
// adapter cache hooks.
//
// Two backends are available:
//
//   - memory: in-process map with TTL expiry and LRU eviction
//   - sqlite: a SQLite database (modernc.org/sqlite) that survives restarts
//
// Usage:
//
//	store, err := cache.Open(cfg.Cache)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	hooks := cache.Hooks(store, cfg.Cache.Mode, collector)
//	adapter, err := modelfactory.New(providerCfg, hooks)
//
// Keys are computed by providers.CacheKey; stores treat them as opaque.
package cache
