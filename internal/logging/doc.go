// Package logging assembles structured slog loggers and formatting helpers
// used by the tasklist daemon and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and carries request correlation IDs through context so handler
// code can tag its log lines. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
