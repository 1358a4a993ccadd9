package source

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type tarSource struct {
	path string
	kind Kind
}

func openTar(path string, kind Kind) (*tarSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrArchiveRead, path, err)
	}
	_ = f.Close()
	return &tarSource{path: path, kind: kind}, nil
}

func (s *tarSource) Path() string { return s.path }

func (s *tarSource) Kind() Kind { return s.kind }

// Walk reads the archive stream forward exactly once.
func (s *tarSource) Walk(fn WalkFunc) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrArchiveRead, s.path, err)
	}
	defer f.Close()

	stream, closeStream, err := s.decompress(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveRead, s.path, err)
	}
	defer closeStream()

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read tar header in %s: %w", ErrArchiveRead, s.path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		live := true
		name := hdr.Name
		member := Member{
			Path:    NormalizePath(name),
			Size:    hdr.Size,
			ModTime: hdr.ModTime,
			open: func() (io.ReadCloser, error) {
				if !live {
					return nil, fmt.Errorf("%w: %s: tar stream has moved past this member", ErrMemberRead, name)
				}
				return io.NopCloser(&memberReader{name: name, r: tr}), nil
			},
		}
		err = fn(member)
		live = false
		if err != nil {
			return err
		}
	}
}

func (s *tarSource) decompress(r io.Reader) (io.Reader, func(), error) {
	switch s.kind {
	case KindTarGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip header: %w", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	case KindTarZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd frame: %w", err)
		}
		return dec, dec.Close, nil
	default:
		return r, func() {}, nil
	}
}

func (s *tarSource) Close() error { return nil }

// memberReader tags mid-stream failures as member read errors.
type memberReader struct {
	name string
	r    io.Reader
}

func (m *memberReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: %s: %w", ErrMemberRead, m.name, err)
	}
	return n, err
}
