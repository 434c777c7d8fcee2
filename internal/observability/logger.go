package observability

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog logger tagged with the process name. Production
// environments emit JSON, everything else gets the text handler.
func NewLogger(env, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(env)}

	var handler slog.Handler
	if env == "prod" || env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", service, "env", env)
}

func levelFor(env string) slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	if env == "local" || env == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
