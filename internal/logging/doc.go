// Package logging assembles structured slog loggers and formatting helpers used
// across the survey tool.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so workflow code can tag log lines with
// survey IDs, form indexes and the per-run identifier. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
