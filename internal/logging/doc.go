// Package logging assembles structured slog loggers and formatting helpers used
// across the dubbing pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code automatically tags
// log lines with job IDs and stage names. Console output is colorized only when
// every destination is a terminal. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
