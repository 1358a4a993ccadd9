// Package pairing groups files that together represent one media item:
// Live Photos (a still plus a short motion clip) and photos with a JSON
// sidecar.
//
// Files are grouped by parent directory and base name, where a sidecar such
// as "IMG_1.jpg.json" contributes the base name "IMG_1". Within a group the
// rules below are applied in order and every file is claimed by at most one
// pair:
//
//  1. Live Photo: the first still among heic, heif, jpg, jpeg (in that
//     priority) is paired with the first clip among mov, mp4.
//  2. Sidecar: for each remaining photo, taking heic, heif, jpg, jpeg first
//     and then any other photo extension alphabetically, an unclaimed file
//     named exactly "<photo name>.json" in the same directory is its sidecar.
//
// Extensions compare case-insensitively. When a group holds several files of
// the same extension, they are considered in lexical path order, so the
// result never depends on input order.
package pairing

import (
	"path"
	"slices"
	"strings"

	"takeoutscout/internal/classify"
	"takeoutscout/internal/takeout"
)

// File is the minimal input to Detect.
type File struct {
	Path string
	Size int64
}

// Role describes what part a file plays in its pair.
type Role string

const (
	RoleLivePhoto      Role = "live_photo"
	RoleLivePhotoVideo Role = "live_photo_video"
	RolePhotoJSON      Role = "photo_json"
	RoleJSONSidecar    Role = "json_sidecar"
)

var (
	liveStillPriority = []string{".heic", ".heif", ".jpg", ".jpeg"}
	liveVideoPriority = []string{".mov", ".mp4"}
)

// Detect returns the pairs found in files. Groups are visited in the order
// their first file appears in the input.
func Detect(files []File) []takeout.MediaPair {
	var (
		order  []string
		groups = make(map[string][]File)
	)
	for _, f := range files {
		key := groupKey(f.Path)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	var pairs []takeout.MediaPair
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		pairs = append(pairs, detectGroup(group)...)
	}
	return pairs
}

// FromDetails adapts file details to Detect's input.
func FromDetails(details []takeout.FileDetail) []File {
	files := make([]File, len(details))
	for i, d := range details {
		files[i] = File{Path: d.Path, Size: d.Size}
	}
	return files
}

// Roles maps every paired path to its role.
func Roles(pairs []takeout.MediaPair) map[string]Role {
	roles := make(map[string]Role, len(pairs)*2)
	for _, p := range pairs {
		switch p.Type {
		case takeout.PairLivePhoto:
			roles[p.PrimaryPath] = RoleLivePhoto
			roles[p.CompanionPath] = RoleLivePhotoVideo
		case takeout.PairPhotoJSON:
			roles[p.PrimaryPath] = RolePhotoJSON
			roles[p.CompanionPath] = RoleJSONSidecar
		}
	}
	return roles
}

func groupKey(p string) string {
	name := classify.BaseName(p)
	var base string
	if len(name) > len(".json") && strings.EqualFold(name[len(name)-5:], ".json") {
		base = classify.Stem(name[:len(name)-5])
	} else {
		base = classify.Stem(name)
	}
	return path.Dir(p) + "/" + base
}

func detectGroup(group []File) []takeout.MediaPair {
	sorted := slices.Clone(group)
	slices.SortFunc(sorted, func(a, b File) int { return strings.Compare(a.Path, b.Path) })

	consumed := make(map[string]bool, len(sorted))
	var pairs []takeout.MediaPair

	still, okStill := firstByExt(sorted, liveStillPriority, consumed)
	video, okVideo := firstByExt(sorted, liveVideoPriority, consumed)
	if okStill && okVideo {
		pairs = append(pairs, newPair(takeout.PairLivePhoto, still, video))
		consumed[still.Path] = true
		consumed[video.Path] = true
	}

	byName := make(map[string]File, len(sorted))
	for _, f := range sorted {
		byName[classify.BaseName(f.Path)] = f
	}
	for _, ext := range sidecarPhotoOrder(sorted) {
		for _, photo := range sorted {
			if consumed[photo.Path] || classify.Extension(photo.Path) != ext {
				continue
			}
			sidecar, ok := byName[classify.BaseName(photo.Path)+".json"]
			if !ok || consumed[sidecar.Path] {
				continue
			}
			pairs = append(pairs, newPair(takeout.PairPhotoJSON, photo, sidecar))
			consumed[photo.Path] = true
			consumed[sidecar.Path] = true
		}
	}
	return pairs
}

func firstByExt(files []File, priority []string, consumed map[string]bool) (File, bool) {
	for _, ext := range priority {
		for _, f := range files {
			if !consumed[f.Path] && classify.Extension(f.Path) == ext {
				return f, true
			}
		}
	}
	return File{}, false
}

// sidecarPhotoOrder lists the photo extensions present in files, Live Photo
// stills first, then the rest alphabetically.
func sidecarPhotoOrder(files []File) []string {
	present := make(map[string]bool)
	for _, f := range files {
		if ext := classify.Extension(f.Path); classify.IsPhotoExtension(ext) {
			present[ext] = true
		}
	}
	var order []string
	for _, ext := range liveStillPriority {
		if present[ext] {
			order = append(order, ext)
			delete(present, ext)
		}
	}
	rest := make([]string, 0, len(present))
	for ext := range present {
		rest = append(rest, ext)
	}
	slices.Sort(rest)
	return append(order, rest...)
}

func newPair(kind takeout.PairType, primary, companion File) takeout.MediaPair {
	return takeout.MediaPair{
		Type:          kind,
		PrimaryPath:   primary.Path,
		CompanionPath: companion.Path,
		PrimarySize:   primary.Size,
		CompanionSize: companion.Size,
		BaseName:      classify.Stem(primary.Path),
	}
}
