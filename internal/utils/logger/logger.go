package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"joddit/internal/app/server/config"
)

// New builds the process logger for the given environment: pretty text
// at debug level locally, JSON at debug level in dev, JSON at info level
// everywhere else.
func New(env string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case config.EnvLocal:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	case config.EnvDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return slog.New(handler)
}
