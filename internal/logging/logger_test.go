package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shard enrolled", "shard", 2, "records", 10)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "shard enrolled", rec["msg"])
	assert.Equal(t, float64(2), rec["shard"])
	assert.Contains(t, rec, "ts")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.With("shard", 3).WithGroup("engine").Warn("slow call", "op", "search", "err", errors.New("took a while"))

	line := buf.String()
	assert.Contains(t, line, "WARN  [shard 3] slow call")
	assert.Contains(t, line, "engine.op=search")
	assert.Contains(t, line, `engine.err="took a while"`)
}

func TestNew_ConsoleSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf, Development: true})
	require.NoError(t, err)

	logger.Info("with caller")
	assert.Contains(t, buf.String(), "with caller [logger_test.go:")

	buf.Reset()
	require.NoError(t, logger.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "no caller", 0)))
	assert.NotContains(t, buf.String(), ".go:")
}

func TestNew_AutoPicksJSONForBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "auto", Output: &buf})
	require.NoError(t, err)
	logger.Info("x")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	assert.False(t, IsTerminal(&buf))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.ErrorContains(t, err, "log format")
	_, err = New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "log level")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing happens")
}
