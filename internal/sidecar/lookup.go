package sidecar

import (
	"path"
	"slices"
	"strings"
)

// Index answers "which JSON file is the sidecar of this media path" for a
// fixed set of member paths.
type Index struct {
	paths           map[string]struct{}
	jsonByDir       map[string][]string
	caseInsensitive bool
}

// NewIndex builds a lookup over paths. With caseInsensitive set, the fallback
// search ignores case in both the ".json" suffix and the stem comparison.
func NewIndex(paths []string, caseInsensitive bool) *Index {
	idx := &Index{
		paths:           make(map[string]struct{}, len(paths)),
		jsonByDir:       make(map[string][]string),
		caseInsensitive: caseInsensitive,
	}
	for _, p := range paths {
		idx.paths[p] = struct{}{}
		if idx.isJSON(p) {
			dir := path.Dir(p)
			idx.jsonByDir[dir] = append(idx.jsonByDir[dir], p)
		}
	}
	for dir := range idx.jsonByDir {
		slices.Sort(idx.jsonByDir[dir])
	}
	return idx
}

// Find returns the sidecar for mediaPath. "<media>.json" is tried first; then
// JSON files in the same directory whose name minus ".json" equals the media
// file name.
func (i *Index) Find(mediaPath string) (string, bool) {
	candidate := mediaPath + ".json"
	if _, ok := i.paths[candidate]; ok {
		return candidate, true
	}
	name := path.Base(mediaPath)
	for _, p := range i.jsonByDir[path.Dir(mediaPath)] {
		if p == mediaPath {
			continue
		}
		stem := path.Base(p)
		stem = stem[:len(stem)-len(".json")]
		if stem == name || (i.caseInsensitive && strings.EqualFold(stem, name)) {
			return p, true
		}
	}
	return "", false
}

func (i *Index) isJSON(p string) bool {
	if i.caseInsensitive {
		return len(p) >= len(".json") && strings.EqualFold(p[len(p)-len(".json"):], ".json")
	}
	return strings.HasSuffix(p, ".json")
}

// FindForMedia is a one-shot case-sensitive lookup.
func FindForMedia(mediaPath string, available []string) (string, bool) {
	return NewIndex(available, false).Find(mediaPath)
}
