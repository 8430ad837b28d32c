package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger builds the process logger for the output format: a
// charmbracelet console logger for text, slog's JSON handler for json.
// Verbose lowers the level to debug.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	console := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "cuesheet",
		Level:           log.InfoLevel,
	})
	if opts.Verbose {
		console.SetLevel(log.DebugLevel)
	}
	return slog.New(console)
}
