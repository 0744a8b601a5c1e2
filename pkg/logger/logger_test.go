package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestNew_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: slog.LevelInfo, Format: FormatJSON, Service: "campus"})

	l.LogAttrs(context.Background(), slog.LevelInfo, "toggled", UserID(2), PostID(1), Err(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "campus", line["service"])
	assert.Equal(t, float64(2), line["user_id"])
	assert.Equal(t, float64(1), line["post_id"])
	assert.Equal(t, "boom", line["error"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: slog.LevelWarn, Format: FormatText})

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestErr_NilIsDropped(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Format: FormatText})

	l.LogAttrs(context.Background(), slog.LevelInfo, "ok", Err(nil))

	assert.False(t, strings.Contains(buf.String(), "error="))
}

func TestForEnvironment(t *testing.T) {
	assert.Equal(t, FormatJSON, ForEnvironment("production", slog.LevelInfo).Format)
	assert.Equal(t, FormatText, ForEnvironment("development", slog.LevelDebug).Format)
	assert.Equal(t, slog.LevelDebug, ForEnvironment("development", slog.LevelDebug).Level)
}

func TestContext(t *testing.T) {
	l := Discard()
	ctx := WithContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
