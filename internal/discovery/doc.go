// Package discovery persists one JSON document per scanned source so later
// scans can merge with earlier ones.
//
// # Identity
//
// A source's identity is its sanitized base name (directory name, or file
// name without the final extension) joined to the first 12 hex digits of the
// MD5 of its resolved absolute path. Identity follows the path, not the
// content: rewriting an archive in place keeps its record.
//
// # Storage
//
// Documents live under the configured discoveries directory as
// <identity>.json beside an index.json mapping absolute source path to
// document file name. Every write goes through a temp file and rename, and
// read-modify-write cycles on the index hold an advisory file lock so two
// processes scanning at once cannot drop each other's entries.
//
// A document that is missing, unreadable, or lacks a required field loads as
// "no record". A corrupt index is treated as empty and rebuilt on the next
// save.
package discovery
