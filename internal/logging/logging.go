// Package logging builds the slog logger used by every command.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w. FormatJSON uses the slog JSON handler;
// anything else uses charmbracelet/log as a human-readable slog handler.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Level:           log.Level(level),
		ReportTimestamp: true,
		Prefix:          "task-cli",
	}))
}
