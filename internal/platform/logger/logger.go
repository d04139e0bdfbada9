package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. JSON output keeps log aggregation
// simple; handlers attach request_id and credential_id attributes per call.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
