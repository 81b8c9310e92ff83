package replay

import (
	"fmt"
	"log/slog"

	"mercator-hq/conduit/pkg/config"
)

// Open builds the recorder selected by cfg.Backend. The returned close
// function releases the backend and is never nil.
func Open(cfg config.ReplayConfig, logger *slog.Logger) (Recorder, func() error, error) {
	switch cfg.Backend {
	case "", "log":
		return NewLogRecorder(logger), func() error { return nil }, nil
	case "sqlite":
		store, err := NewSQLiteStore(SQLiteConfig{
			Path:          cfg.SQLite.Path,
			WALMode:       cfg.SQLite.WALMode,
			BusyTimeout:   cfg.SQLite.BusyTimeout,
			RetentionDays: cfg.Retention.Days,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported replay backend: %s", cfg.Backend)
	}
}
