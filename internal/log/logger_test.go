package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestGetOrGenerateCorrelationID_UsesContextValue(t *testing.T) {
	ctx := context.WithValue(context.Background(), CorrelatedIDKey, "abc-123")

	assert.Equal(t, "abc-123", GetOrGenerateCorrelationID(ctx))
	assert.NotEmpty(t, GetOrGenerateCorrelationID(context.Background()))
}

func TestGetLoggerInstanceFromContext_PrefersInjectedLogger(t *testing.T) {
	injected := NewLoggerWithJSONOutput()
	ctx := context.WithValue(context.Background(), LoggerKeyForContext, injected)

	assert.Same(t, injected, GetLoggerInstanceFromContext(ctx, NewLoggerWithJSONOutput()))
}

func TestNewLoggerFromEnv_WritesToRotatingFile(t *testing.T) {
	path := t.TempDir() + "/app.log"
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewLoggerFromEnv()
	logger.Debug("hello")

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.FileExists(t, path)
}
