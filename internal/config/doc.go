// Package config loads, normalizes, and validates takeoutscout configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TAKEOUTSCOUT_STATE_DIR
// environment override. Directories that are left empty in the file are
// derived from the state directory so a single setting relocates every piece
// of persisted state: discovery documents, the discoveries index, the hash
// database, and log files.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
