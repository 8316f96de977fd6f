package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "debug level", logLevel: "debug"},
		{name: "info level", logLevel: "info"},
		{name: "warn level", logLevel: "warn"},
		{name: "error level", logLevel: "error"},
		{name: "mixed case", logLevel: "WARN"},
		{name: "invalid level falls back to info", logLevel: "verbose"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.logLevel})
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestLoggerContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		tagged := slog.Default().With("component", "test")
		ctx := WithLogger(context.Background(), tagged)
		assert.Same(t, tagged, FromContext(ctx))
		assert.Same(t, tagged, FromContextOrDefault(ctx, nil))
	})

	t.Run("empty context falls back", func(t *testing.T) {
		ctx := context.Background()
		assert.Same(t, slog.Default(), FromContext(ctx))

		def := slog.Default().With("component", "fallback")
		assert.Same(t, def, FromContextOrDefault(ctx, def))
	})
}
