// Package preflight checks that takeoutscout's persisted state is usable.
//
// The CLI "takeoutscout status" command runs RunAll and renders each Result;
// individual checks are exported so callers can probe a single path.
package preflight
