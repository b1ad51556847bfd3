// Package logging builds the process-wide slog logger.
//
// Production uses a JSON handler on stdout; development uses a coloured tint
// handler on stderr. The level comes from LOG_LEVEL (debug, info, warn, error).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a logger for the given environment and sets it as the default.
func New(isProduction bool, level string) *slog.Logger {
	var handler slog.Handler
	if isProduction {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)})
	} else {
		handler = newTintHandler(os.Stderr, ParseLevel(level))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func newTintHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// ParseLevel maps a textual level to slog.Level, defaulting to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
