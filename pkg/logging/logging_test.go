package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestTintHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTintHandler(&buf, slog.LevelWarn))

	logger.Info("lock acquired")
	assert.Empty(t, buf.String())

	logger.Warn("lock contended", slog.String("order_id", "42"))
	assert.Contains(t, buf.String(), "lock contended")
	assert.Contains(t, buf.String(), "order_id")
}
