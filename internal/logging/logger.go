// Package logging builds the slog logger used by the optimizer commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options selects where and how much to log
type Options struct {
	// File, when set, receives a copy of every record
	File    string
	Verbose bool
	// Stderr defaults to os.Stderr
	Stderr io.Writer
}

// New creates a text logger writing to stderr and, if requested, a log file.
// The returned close function releases the file and is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var w io.Writer = stderr
	closeFn := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, closeFn, fmt.Errorf("failed to create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(stderr, f)
		closeFn = f.Close
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h), closeFn, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
