// Package logs reads takeoutscout's daily log files back for the CLI.
//
// Tail returns the last N lines of a file, or everything written after a
// byte offset, and can wait a bounded time for new lines so callers can
// implement follow mode by looping on the returned offset. Latest picks the
// newest daily file in a log directory.
package logs
