// Package classify holds the pure path heuristics used while scanning a
// Takeout source: extension based file categories, the Google service guess
// derived from member paths, and the multi-part archive group name.
//
// Nothing in this package touches the filesystem. Every function is a pure
// function of its string inputs so the same rules apply to zip members, tar
// members, and directory entries alike.
package classify
