package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrNoTextfile is returned by WriteTextfile when no path is configured.
var ErrNoTextfile = errors.New("metrics textfile path is not configured")

// WriteTextfile writes every collected metric to the configured textfile
// (telemetry.metrics.textfile) for the node exporter textfile collector.
// The file is replaced atomically.
func (c *Collector) WriteTextfile() error {
	if !c.enabled() {
		return nil
	}
	if c.config.Textfile == "" {
		return ErrNoTextfile
	}
	if err := prometheus.WriteToTextfile(c.config.Textfile, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
