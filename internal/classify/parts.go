package classify

import (
	"regexp"
	"strings"
)

var (
	partsPattern        = regexp.MustCompile(`(?i)^(.+?)-\d{3,}(?:\.zip|\.tgz|\.tar\.gz)$`)
	googlePartsPattern  = regexp.MustCompile(`^(Takeout-\d{8}T\d{6}Z-\w+?)-\d{3,}$`)
	compoundArchiveExts = []string{".tar.gz", ".tar.zst"}
	archiveExts         = []string{".zip", ".tgz", ".tar", ".tzst"}
)

// DerivePartsGroup returns the shared prefix of a split archive set. Names
// like "takeout-20240101T120000Z-001.zip" yield "takeout-20240101T120000Z".
// Google's "Takeout-<date>-<suffix>-<NNN>" stems are recognized as well, and
// anything else falls back to the archive stem.
func DerivePartsGroup(filename string) string {
	name := BaseName(filename)
	if m := partsPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	stem := ArchiveStem(name)
	if m := googlePartsPattern.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	return stem
}

// ArchiveStem strips a recognized archive extension, treating ".tar.gz" and
// ".tar.zst" as a single extension. Unrecognized names lose only their final
// extension.
func ArchiveStem(filename string) string {
	name := BaseName(filename)
	lower := strings.ToLower(name)
	for _, ext := range compoundArchiveExts {
		if strings.HasSuffix(lower, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return Stem(name)
}

// IsArchiveName reports whether the file name carries a supported archive extension.
func IsArchiveName(filename string) bool {
	lower := strings.ToLower(BaseName(filename))
	for _, ext := range compoundArchiveExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
