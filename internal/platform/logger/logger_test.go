package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/config"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "verbose", want: slog.LevelInfo}, // invalid falls back to info
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.level})
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.want))
			if tc.want > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.want-4))
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	// Without a stored logger the default is returned.
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	stored := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(context.Background(), stored)
	assert.Equal(t, stored, FromContext(ctx))

	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Equal(t, stored, FromContextOrDefault(ctx, fallback))
	assert.Equal(t, fallback, FromContextOrDefault(context.Background(), fallback))
}
