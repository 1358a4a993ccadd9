package textutil

import "strings"

// identifierReplacer maps characters that are unsafe in file names on common
// filesystems to underscores.
var identifierReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeIdentifier replaces filesystem-unsafe characters with underscores.
// Every other rune, including spaces and non-ASCII letters, is preserved so
// identifiers stay recognizable.
func SanitizeIdentifier(name string) string {
	return identifierReplacer.Replace(name)
}

// Truncate shortens s to at most max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
