package classify

import (
	"regexp"
	"strings"
)

// UnknownService is returned when no hint matches.
const UnknownService = "Unknown"

// ServiceHint pairs a display name with the pattern that identifies it.
type ServiceHint struct {
	Name    string
	Pattern *regexp.Regexp
}

// ServiceHints is evaluated in order and the first match wins. Broad patterns
// such as "Mail" and "Keep" sit at the end so that the more specific product
// folders are reported first.
var ServiceHints = []ServiceHint{
	{Name: "Google Photos", Pattern: regexp.MustCompile(`(?i)Google Photos`)},
	{Name: "Google Drive", Pattern: regexp.MustCompile(`(?i)Google Drive`)},
	{Name: "Google Maps", Pattern: regexp.MustCompile(`(?i)Maps|Location|Contributions`)},
	{Name: "Hangouts/Chat", Pattern: regexp.MustCompile(`(?i)Hangouts|Chat`)},
	{Name: "Blogger/Album Archive", Pattern: regexp.MustCompile(`(?i)Blogger|Album Archive|Picasa`)},
	{Name: "Contacts", Pattern: regexp.MustCompile(`(?i)Contacts`)},
	{Name: "Calendar", Pattern: regexp.MustCompile(`(?i)Calendar`)},
	{Name: "Mail", Pattern: regexp.MustCompile(`(?i)Mail`)},
	{Name: "YouTube", Pattern: regexp.MustCompile(`(?i)YouTube`)},
	{Name: "Keep", Pattern: regexp.MustCompile(`(?i)Keep`)},
}

// GuessService joins every member path and returns the first hint that matches.
func GuessService(paths []string) string {
	if len(paths) == 0 {
		return UnknownService
	}
	joined := strings.Join(paths, "\n")
	for _, hint := range ServiceHints {
		if hint.Pattern.MatchString(joined) {
			return hint.Name
		}
	}
	return UnknownService
}
