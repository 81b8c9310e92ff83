package replay

import (
	"context"
	"log/slog"
)

// LogRecorder writes captures to a structured logger.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a recorder logging through logger, or the slog
// default when logger is nil.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger.With("component", "replay")}
}

// Record implements Recorder.
func (r *LogRecorder) Record(ctx context.Context, c *Capture) error {
	r.logger.InfoContext(ctx, "provider exchange captured",
		"capture_id", c.ID,
		"provider", c.Provider,
		"model", c.Model,
		"url", c.URL,
		"stream", c.Stream,
		"status_code", c.StatusCode,
		"request_hash", c.RequestHash,
		"request_body", c.RequestBody,
		"payloads", c.Payloads,
		"payload_count", len(c.Payloads),
		"truncated", c.Truncated,
		"error", c.Error,
		"duration_ms", c.Duration().Milliseconds(),
	)
	return nil
}
