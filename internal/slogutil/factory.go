package slogutil

import (
	"io"
	"log/slog"
	"os"
)

// Options describes where and how the planner logs.
type Options struct {
	// Level applies to both the console and the log file.
	Level slog.Level
	// Format is "text" or "json".
	Format string
	// Console receives log lines; nil means os.Stderr.
	Console io.Writer
	// ConsoleLevel overrides Level for the console when set, typically from
	// the -v/-q flags.
	ConsoleLevel *slog.Level
	// File, when non-empty, also writes to a rotating file at this path.
	File       string
	MaxSize    string
	MaxBackups int
}

// LoggerFactory builds the planner's root logger and hands out per-component
// children. Close releases any log files it opened.
type LoggerFactory struct {
	root    *slog.Logger
	closers []io.Closer
}

// NewLoggerFactory builds the root logger described by opts. If the log file
// cannot be opened the factory falls back to console-only logging and reports
// the failure there.
func NewLoggerFactory(opts Options) *LoggerFactory {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := opts.Level
	if opts.ConsoleLevel != nil {
		consoleLevel = *opts.ConsoleLevel
	}

	f := &LoggerFactory{}
	handlers := []slog.Handler{NewHandler(console, opts.Format, consoleLevel)}

	var fileErr error
	if opts.File != "" {
		rf, err := OpenRotatingFile(opts.File, ParseSize(opts.MaxSize), opts.MaxBackups)
		if err != nil {
			fileErr = err
		} else {
			f.closers = append(f.closers, rf)
			handlers = append(handlers, NewHandler(rf, opts.Format, opts.Level))
		}
	}

	if len(handlers) == 1 {
		f.root = slog.New(handlers[0])
	} else {
		f.root = slog.New(NewTeeHandler(handlers...))
	}
	if fileErr != nil {
		f.root.Warn("Log file unavailable, logging to console only", "path", opts.File, "error", fileErr.Error())
	}
	return f
}

// Root returns the root logger.
func (f *LoggerFactory) Root() *slog.Logger {
	return f.root
}

// For returns a logger tagged with component=name.
func (f *LoggerFactory) For(name string) *slog.Logger {
	return f.root.With("component", name)
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
