package source

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

type zipSource struct {
	path   string
	reader *zip.ReadCloser
}

func openZip(path string) (*zipSource, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open zip %s: %w", ErrArchiveRead, path, err)
	}
	return &zipSource{path: path, reader: rc}, nil
}

func (s *zipSource) Path() string { return s.path }

func (s *zipSource) Kind() Kind { return KindZip }

func (s *zipSource) Walk(fn WalkFunc) error {
	for _, f := range s.reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		file := f
		member := Member{
			Path:    NormalizePath(file.Name),
			Size:    int64(file.UncompressedSize64),
			ModTime: file.Modified,
			open: func() (io.ReadCloser, error) {
				rc, err := file.Open()
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %w", ErrMemberRead, file.Name, err)
				}
				return rc, nil
			},
		}
		if err := fn(member); err != nil {
			return err
		}
	}
	return nil
}

func (s *zipSource) Close() error {
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}
