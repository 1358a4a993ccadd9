// Package hashindex computes streaming content hashes and tracks which
// files across all scanned sources share identical content.
//
// The Index keeps, per hash, the ordered list of (source, path, size)
// entries plus a reverse lookup from (source, path) to hash. Re-adding a
// (source, path) key replaces its previous entry in place, so the two views
// never disagree.
//
// Duplicate statistics treat the largest member of each duplicate set as the
// copy that is kept; every other member counts as a duplicate and its size as
// wasted bytes. Ties on size keep the entry that was added first.
//
// Store persists index entries in SQLite so duplicates can be analysed
// across separate runs.
package hashindex
