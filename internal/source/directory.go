package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type dirSource struct {
	root string
}

func openDirectory(root string) (*dirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrArchiveRead, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnsupported, root)
	}
	return &dirSource{root: root}, nil
}

func (s *dirSource) Path() string { return s.root }

func (s *dirSource) Kind() Kind { return KindDirectory }

// Walk visits regular files in lexical order. Unreadable subdirectories are
// skipped; only a failure on the root itself is reported.
func (s *dirSource) Walk(fn WalkFunc) error {
	var stop error
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		full := path
		member := Member{
			Path:    NormalizePath(filepath.ToSlash(rel)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			open: func() (io.ReadCloser, error) {
				f, err := os.Open(full)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %w", ErrMemberRead, full, err)
				}
				return f, nil
			},
		}
		if err := fn(member); err != nil {
			stop = err
			return fs.SkipAll
		}
		return nil
	})
	if stop != nil {
		return stop
	}
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return fmt.Errorf("%w: walk %s: %w", ErrArchiveRead, s.root, err)
	}
	return nil
}

func (s *dirSource) Close() error { return nil }
