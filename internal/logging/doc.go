// Package logging assembles structured slog loggers and formatting helpers used
// across takeoutscout.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, tags every record of one CLI invocation with a run ID, and
// exposes context helpers so scan code can attach the current scan ID and
// source path without threading them through every call. A no-op logger is
// provided for tests and for components constructed without one.
//
// Warnings follow one shape: WarnWithContext guarantees event_type,
// error_hint, and impact are present so a reader learns the cause, the
// consequence, and the next step from a single line.
package logging
