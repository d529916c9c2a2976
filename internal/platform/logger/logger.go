package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON output is for deployed environments;
// text is friendlier during development.
func New(json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
