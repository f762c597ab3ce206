package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nick-pape/mcp-custom-command-line/internal/infra/config"
)

// newLogger builds the process logger. Logs never go to stdout: with the
// stdio transport stdout carries the protocol.
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatAuto {
		format = config.LogFormatJSON
		if isTerminal(w) {
			format = config.LogFormatText
		}
	}
	if format == config.LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
