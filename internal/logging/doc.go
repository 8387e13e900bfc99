// Package logging assembles the slog loggers used by the demtile command.
//
// It owns the console and JSON handlers, level parsing, and output plumbing
// (the supplied writer plus an optional append-only log file).
package logging
