package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/address-verify-service/internal/config"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT, writing to stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewLoggerTo(os.Stdout, cfg)
}

// NewLoggerTo is NewLogger with a caller-chosen destination.
func NewLoggerTo(w io.Writer, cfg *config.Config) *slog.Logger {
	return newLogger(w, cfg.LogLevel, cfg.LogFormat)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
