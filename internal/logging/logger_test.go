package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-demtile/internal/config"
	"github.com/twpayne/go-demtile/internal/logging"
)

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:  "info",
		Format: "console",
		Output: &buf,
	})
	assert.NoError(t, err)

	logger.Debug("hidden")
	logger.With("archive", "N050E010.zip").WithGroup("tile").Warn("destination collision",
		"dir", "+50+010",
		"err", errors.New("file exists"),
	)

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, " WARN destination collision")
	assert.Contains(t, output, "archive=N050E010.zip")
	assert.Contains(t, output, "tile.dir=+50+010")
	assert.Contains(t, output, `tile.err="file exists"`)
	assert.NotContains(t, output, ".go:")
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:  "debug",
		Output: &buf,
	})
	assert.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "DEBUG visible [logger_test.go:")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:  "warn",
		Format: "JSON",
		Output: &buf,
	})
	assert.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("unparseable filename", "file", "ALPSMLC30_DSM.tif")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 1, len(lines))
	var record map[string]any
	assert.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "warn", record["level"])
	assert.Equal(t, "unparseable filename", record["msg"])
	assert.Equal(t, "ALPSMLC30_DSM.tif", record["file"])
	_, ok := record["ts"]
	assert.True(t, ok)
}

func TestLoggerFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "demtile.log")
	logger, err := logging.New(logging.Options{
		File:   path,
		Output: &buf,
	})
	assert.NoError(t, err)

	logger.Info("organized", "files", 3)

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "INFO organized files=3")
	assert.Equal(t, buf.String(), string(content))
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	assert.EqualError(t, err, `log format: unsupported value "xml"`)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"

	var buf bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &buf)
	assert.NoError(t, err)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	logger.Debug("debug message")
	assert.Contains(t, buf.String(), `"msg":"debug message"`)
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		level    string
		expected slog.Level
	}{
		{level: "debug", expected: slog.LevelDebug},
		{level: " INFO ", expected: slog.LevelInfo},
		{level: "warning", expected: slog.LevelWarn},
		{level: "error", expected: slog.LevelError},
		{level: "", expected: slog.LevelInfo},
		{level: "verbose", expected: slog.LevelInfo},
	} {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, logging.ParseLevel(tc.level))
		})
	}
}

func TestNewNop(t *testing.T) {
	logger := logging.NewNop()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}
