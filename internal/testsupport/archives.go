package testsupport

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Entry is one member written into a fixture archive or tree.
type Entry struct {
	Name string
	Data []byte
}

// Text is shorthand for an entry with string content.
func Text(name, content string) Entry {
	return Entry{Name: name, Data: []byte(content)}
}

var fixtureTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// WriteZip builds a zip archive at path containing entries in order. Names
// ending in "/" are written as directory entries.
func WriteZip(t testing.TB, path string, entries ...Entry) string {
	t.Helper()

	f := create(t, path)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: fixtureTime}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

// Compression selects the stream wrapper for WriteTar.
type Compression int

const (
	NoCompression Compression = iota
	Gzip
	Zstd
)

// WriteTar builds a tar archive at path, optionally compressed.
func WriteTar(t testing.TB, path string, compression Compression, entries ...Entry) string {
	t.Helper()

	f := create(t, path)
	defer f.Close()

	var (
		w       io.Writer = f
		closeFn           = func() error { return nil }
	)
	switch compression {
	case Gzip:
		gz := gzip.NewWriter(f)
		w, closeFn = gz, gz.Close
	case Zstd:
		enc, err := zstd.NewWriter(f)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		w, closeFn = enc, enc.Close
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: 0o644, Size: int64(len(e.Data)), ModTime: fixtureTime, Typeflag: tar.TypeReg}
		if len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/' {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write(e.Data); err != nil {
				t.Fatalf("tar write %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("compression close: %v", err)
	}
	return path
}

// WriteTree materializes entries below root as plain files.
func WriteTree(t testing.TB, root string, entries ...Entry) string {
	t.Helper()

	for _, e := range entries {
		target := filepath.Join(root, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", target, err)
		}
		if err := os.WriteFile(target, e.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
	return root
}

func create(t testing.TB, path string) *os.File {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	return f
}
