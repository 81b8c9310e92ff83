package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercator-hq/conduit/pkg/config"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("cache store is closed")

// Store persists generations under cache keys.
//
// A Store never decides what is cacheable: the pipeline only writes results
// of successful batch runs and fully drained streams.
type Store interface {
	// Name identifies the backend in metrics and logs ("memory", "sqlite").
	Name() string

	// Get returns the generations stored under key. Expired entries are
	// reported as misses.
	Get(ctx context.Context, key string) ([]string, bool, error)

	// Set stores generations under key, replacing any previous entry.
	Set(ctx context.Context, key string, generations []string) error

	// Prune deletes expired entries and returns how many were removed.
	Prune(ctx context.Context) (int, error)

	// Stats returns entry counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the store's resources.
	Close() error
}

// Stats summarizes a store's contents.
type Stats struct {
	Backend string
	Entries int
	Expired int
}

// Entry is a stored cache record.
type Entry struct {
	Generations []string
	CreatedAt   time.Time

	// ExpiresAt is zero when the entry never expires.
	ExpiresAt time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Open creates the store selected by cfg.Backend.
func Open(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.TTL, cfg.MaxEntries), nil
	case "sqlite":
		return NewSQLiteStore(SQLiteStoreConfig{
			Path:        cfg.SQLite.Path,
			TTL:         cfg.TTL,
			WALMode:     cfg.SQLite.WALMode,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}
