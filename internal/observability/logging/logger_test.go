package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_DefaultsToJSON(t *testing.T) {
	logger := NewLogger()

	_, ok := logger.Handler().(*slog.JSONHandler)
	assert.True(t, ok, "expected a JSON handler by default")
}

func TestNewLogger_TextFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")

	logger := NewLogger()

	_, ok := logger.Handler().(*slog.TextHandler)
	assert.True(t, ok, "expected a text handler with LOG_FORMAT=text")
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_InfoLevelByDefault(t *testing.T) {
	logger := NewLogger()

	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}
