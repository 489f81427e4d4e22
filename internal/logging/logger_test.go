package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

//nolint:paralleltest // Setup replaces the process-wide default logger
func TestSetup(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	t.Run("json handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Setup(&buf, "warn", "JSON")
		logger.Info("hidden")
		logger.Warn("shown", "table", "sales")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "sales", entry["table"])
		assert.Same(t, logger, slog.Default())
	})

	t.Run("text handler", func(t *testing.T) {
		var buf bytes.Buffer
		Setup(&buf, "debug", "text").Debug("loaded", "rows", 3)
		assert.Contains(t, buf.String(), "msg=loaded rows=3")
	})
}

func TestValidFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidFormat(""))
	assert.True(t, ValidFormat("text"))
	assert.True(t, ValidFormat("Json"))
	assert.False(t, ValidFormat("xml"))
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := NewContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))

	WithFields(ctx, "trigger", "watch").Info("reload")
	assert.Contains(t, buf.String(), "trigger=watch")
}
