package cli

import (
	"io"
	"log/slog"
)

// newLogger builds the process logger. Logs always go to w (stderr in
// practice) so stdout stays clean for command output; --format json
// switches to the JSON handler.
func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
