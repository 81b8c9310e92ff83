package replay

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get for an unknown capture ID.
var ErrNotFound = errors.New("capture not found")

// SQLiteConfig contains configuration for the SQLite capture store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// RetentionDays is how long captures are kept by Prune (0 = forever).
	RetentionDays int
}

// SQLiteStore persists captures in SQLite so they can be listed and replayed
// later. It implements Recorder and retention.Target.
type SQLiteStore struct {
	db     *sql.DB
	config SQLiteConfig
	now    func() time.Time
	logger *slog.Logger
}

// schema is the capture table layout.
const schema = `
CREATE TABLE IF NOT EXISTS captures (
    id TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    url TEXT NOT NULL,
    stream BOOLEAN NOT NULL,
    request_body TEXT NOT NULL,
    request_hash TEXT NOT NULL,
    status_code INTEGER NOT NULL,
    payloads TEXT NOT NULL,
    error TEXT,
    truncated BOOLEAN NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_captures_started_at ON captures(started_at);
CREATE INDEX IF NOT EXISTS idx_captures_provider ON captures(provider);
`

// NewSQLiteStore opens (creating if needed) the capture database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create replay directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		config: cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "replay.sqlite"),
	}, nil
}

// Record implements Recorder.
func (s *SQLiteStore) Record(ctx context.Context, c *Capture) error {
	payloads, err := json.Marshal(c.Payloads)
	if err != nil {
		return fmt.Errorf("failed to encode payloads: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO captures (
			id, provider, model, url, stream, request_body, request_hash,
			status_code, payloads, error, truncated, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Provider, c.Model, c.URL, c.Stream, c.RequestBody, c.RequestHash,
		c.StatusCode, string(payloads), c.Error, c.Truncated, c.StartedAt.UTC(), c.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store capture: %w", err)
	}

	s.logger.Debug("capture stored", "capture_id", c.ID, "provider", c.Provider)
	return nil
}

// Filter selects captures for List.
type Filter struct {
	// Provider restricts results to one provider tag.
	Provider string

	// Since restricts results to captures started at or after this time.
	Since time.Time

	// Limit caps the number of results (default 50).
	Limit int
}

// List returns captures matching f, newest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]*Capture, error) {
	var where []string
	var args []any
	if f.Provider != "" {
		where = append(where, "provider = ?")
		args = append(args, f.Provider)
	}
	if !f.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, f.Since.UTC())
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT " + columns + " FROM captures"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	var out []*Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	return out, nil
}

// Get returns one capture by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Capture, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM captures WHERE id = ?", id)
	c, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

// Name implements retention.Target.
func (s *SQLiteStore) Name() string { return "replay.sqlite" }

// Prune deletes captures older than the retention period. It implements
// retention.Target.
func (s *SQLiteStore) Prune(ctx context.Context) (int, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -s.config.RetentionDays)

	result, err := s.db.ExecContext(ctx, "DELETE FROM captures WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune captures: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned captures: %w", err)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const columns = `id, provider, model, url, stream, request_body, request_hash,
	status_code, payloads, COALESCE(error, ''), truncated, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(row scanner) (*Capture, error) {
	var c Capture
	var payloads string
	err := row.Scan(
		&c.ID, &c.Provider, &c.Model, &c.URL, &c.Stream, &c.RequestBody, &c.RequestHash,
		&c.StatusCode, &payloads, &c.Error, &c.Truncated, &c.StartedAt, &c.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	if err := json.Unmarshal([]byte(payloads), &c.Payloads); err != nil {
		return nil, fmt.Errorf("failed to decode payloads of capture %s: %w", c.ID, err)
	}
	return &c, nil
}
