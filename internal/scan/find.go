package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"takeoutscout/internal/classify"
)

// Sources lists what FindSources located under a root.
type Sources struct {
	Archives    []string
	Directories []string
}

// All returns archives followed by directories.
func (s Sources) All() []string {
	out := make([]string, 0, len(s.Archives)+len(s.Directories))
	out = append(out, s.Archives...)
	return append(out, s.Directories...)
}

var takeoutMarkerDirs = map[string]bool{
	"Google Photos": true,
	"Google Drive":  true,
	"Google Maps":   true,
}

// FindSources walks root for supported archives at any depth and for
// unpacked Takeout directories. root itself counts as a Takeout directory
// when one of its child directories looks like Takeout content; root-level
// child directories whose name contains "takeout" are returned as well.
// Unreadable subdirectories are skipped.
func FindSources(root string) (Sources, error) {
	var found Sources
	info, err := os.Stat(root)
	if err != nil {
		return found, fmt.Errorf("find sources: %w", err)
	}
	if !info.IsDir() {
		return found, fmt.Errorf("find sources: %s is not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return found, fmt.Errorf("find sources: %w", err)
	}
	rootIsTakeout := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.Contains(strings.ToLower(name), "takeout") {
			rootIsTakeout = true
			found.Directories = append(found.Directories, filepath.Join(root, name))
		} else if takeoutMarkerDirs[name] {
			rootIsTakeout = true
		}
	}
	if rootIsTakeout {
		found.Directories = append(found.Directories, root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() && classify.IsArchiveName(d.Name()) {
			found.Archives = append(found.Archives, path)
		}
		return nil
	})
	if err != nil {
		return found, fmt.Errorf("find sources: %w", err)
	}

	sort.Strings(found.Archives)
	sort.Strings(found.Directories)
	return found, nil
}
