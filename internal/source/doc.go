// Package source enumerates the members of a Takeout source without
// extracting it. Zip archives, tar archives (plain, gzip, zstd) and plain
// directories are exposed through the same Source interface: Walk visits
// every regular file once, in container order, and a member's content is
// only read when its Open method is called.
//
// Tar members are backed by the single forward stream of the archive, so a
// member reader is valid only for the duration of the WalkFunc call that
// received it. Zip and directory members can be opened at any time until the
// source is closed.
package source
