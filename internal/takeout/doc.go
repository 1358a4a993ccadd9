// Package takeout defines the value types shared by the analysis engine:
// per-file details, media pairs, photo metadata, geo locations, and the
// per-scan archive summary. The types carry JSON tags because they are
// embedded in persisted discovery documents; the field names are part of
// that on-disk schema and must only ever grow.
package takeout
