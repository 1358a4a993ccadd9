// Command takeoutscout inspects Google Takeout exports without extracting
// them.
//
// It scans zip, tar, and unpacked Takeout sources, reports per-source
// summaries, keeps a discovery record per source so repeated scans merge,
// and answers follow-up questions from stored data: which files are
// duplicated across exports and how well sidecar dates agree with EXIF.
//
// Usage:
//
//	takeoutscout scan ~/Downloads/takeout-*.zip
//	takeoutscout scan --find --hash ~/Takeouts
//	takeoutscout discoveries list
//	takeoutscout dupes --limit 20
//	takeoutscout dates ~/Downloads/takeout-001.zip
//	takeoutscout logs --follow
//	takeoutscout status
package main
