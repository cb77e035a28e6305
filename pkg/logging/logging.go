// Package logging configures the process-wide slog logger. The JSON
// handler is meant for deployments; the console handler uses tint for
// colored local output. The returned LevelVar allows the level to be
// changed at runtime.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger with the given format ("json" or
// "console") and initial level, and returns the LevelVar controlling it.
func Setup(format string, level slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(level)

	var handler slog.Handler
	if format == "console" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lv,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: lv,
		})
	}

	slog.SetDefault(slog.New(handler))
	return lv
}
