package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// writeMetrics writes the default registry to path in the node_exporter
// textfile format. An empty path disables it.
func writeMetrics(path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logger.Debug("wrote metrics", "path", path)
	return nil
}
