package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextScopedLogger checks that context helpers store and retrieve scoped loggers.
func TestContextScopedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithWriter(zapcore.DebugLevel, &buf)
	ctx := ToContext(context.Background(), l)
	ctx = WithName(ctx, "catalog")
	ctx = WithKV(ctx, "feed", "https://example.com/feed.csv")

	InfoKV(ctx, "Fetched releases", "count", 2)
	require.NoError(t, FromContext(ctx).Sync())

	out := buf.String()
	require.Contains(t, out, "catalog")
	require.Contains(t, out, "Fetched releases")
	require.Contains(t, out, "https://example.com/feed.csv")
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
