package cli

import (
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/callvault/callvault/internal/config"
)

// newSweepLogger builds the logger one sweep runs with. Every line carries
// the stage and a sweep id so interleaved orchestrator runs stay separable.
func newSweepLogger(cfg config.LogConfig, stage string) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("stage", stage, "sweep_id", uuid.NewString())
}
