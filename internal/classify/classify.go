package classify

import (
	"path"
	"strings"
)

// Category is the coarse file type assigned to every member of a source.
type Category string

const (
	CategoryPhoto Category = "photo"
	CategoryVideo Category = "video"
	CategoryJSON  Category = "json"
	CategoryOther Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPhoto, CategoryVideo, CategoryJSON, CategoryOther}

var photoExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".jfif": {}, ".png": {}, ".heic": {}, ".heif": {},
	".webp": {}, ".gif": {}, ".bmp": {}, ".tif": {}, ".tiff": {}, ".avif": {}, ".jxl": {},
	// RAW
	".raw": {}, ".dng": {}, ".arw": {}, ".cr2": {}, ".cr3": {}, ".nef": {}, ".nrw": {},
	".orf": {}, ".rw2": {}, ".raf": {}, ".srf": {}, ".sr2": {}, ".pef": {}, ".srw": {},
	".psd": {}, ".svg": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".m4v": {}, ".avi": {}, ".mts": {}, ".m2ts": {}, ".wmv": {},
	".3gp": {}, ".mkv": {}, ".webm": {}, ".mpg": {}, ".mpeg": {}, ".flv": {}, ".ogv": {},
	".vob": {}, ".ts": {}, ".mxf": {},
}

// Extension returns the lowercased final extension of p including the dot,
// or "" when the base name has none. Both slash styles are accepted.
func Extension(p string) string {
	return strings.ToLower(path.Ext(BaseName(p)))
}

// BaseName returns the final element of a forward- or back-slash path.
func BaseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Stem returns the base name without its final extension.
func Stem(p string) string {
	name := BaseName(p)
	return strings.TrimSuffix(name, path.Ext(name))
}

// Classify maps a path to its category by lowercase extension lookup.
func Classify(p string) Category {
	ext := Extension(p)
	if _, ok := photoExtensions[ext]; ok {
		return CategoryPhoto
	}
	if _, ok := videoExtensions[ext]; ok {
		return CategoryVideo
	}
	if ext == ".json" {
		return CategoryJSON
	}
	return CategoryOther
}

// IsMedia reports whether the category is a photo or a video.
func (c Category) IsMedia() bool {
	return c == CategoryPhoto || c == CategoryVideo
}

// IsPhotoExtension reports whether ext (lowercase, with dot) is a photo extension.
func IsPhotoExtension(ext string) bool {
	_, ok := photoExtensions[ext]
	return ok
}

// Tally counts paths per category. The counts always sum to len(paths).
func Tally(paths []string) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, p := range paths {
		counts[Classify(p)]++
	}
	return counts
}
