package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{"error uppercase", "ERROR", slog.LevelError},
		{"error lowercase", "error", slog.LevelError},
		{"warning", "WARNING", slog.LevelWarn},
		{"warn alias", "warn", slog.LevelWarn},
		{"info", "INFO", slog.LevelInfo},
		{"debug", "DEBUG", slog.LevelDebug},
		{"whitespace trimmed", "  debug  ", slog.LevelDebug},
		{"empty defaults to info", "", slog.LevelInfo},
		{"garbage defaults to info", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.level))
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, "WARNING", LevelFromVerbosity(0))
	assert.Equal(t, "WARNING", LevelFromVerbosity(-1))
	assert.Equal(t, "INFO", LevelFromVerbosity(1))
	assert.Equal(t, "DEBUG", LevelFromVerbosity(2))
	assert.Equal(t, "DEBUG", LevelFromVerbosity(5))
}

func TestNewLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("DEBUG", &buf)
	require.NotNil(t, logger)

	logger.Debug("probe completed", "instance", "web-1", "healthy", true)

	output := buf.String()
	assert.Contains(t, output, "probe completed")
	assert.Contains(t, output, "instance=web-1")
	assert.Contains(t, output, "healthy=true")
}

func TestNewLoggerWithWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("ERROR", &buf)

	logger.Info("should be filtered")
	logger.Error("should appear")

	output := buf.String()
	assert.False(t, strings.Contains(output, "should be filtered"))
	assert.Contains(t, output, "should appear")
}
