// Package scan orchestrates one pass over a Takeout source: enumerate the
// container, classify every member, optionally hash it and sample image bytes
// for EXIF, resolve and parse JSON sidecars, detect media pairs, and assemble
// the ArchiveSummary plus the persisted discovery record.
//
// Each source is read forward exactly once. Members are opened at most once
// during the walk, so tar streams never need to be rewound; sidecar
// resolution happens after the walk from JSON bytes buffered along the way.
//
// Failures are contained at the narrowest level that still makes sense: a
// member that cannot be read keeps its path and size, a source that cannot be
// enumerated yields a degraded summary, and only a failure to persist a
// discovery record is returned to the caller.
package scan
