package source_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"takeoutscout/internal/source"
	"takeoutscout/internal/testsupport"
)

var fixtureEntries = []testsupport.Entry{
	testsupport.Text("Takeout/", ""),
	testsupport.Text("Takeout/Google Photos/", ""),
	testsupport.Text("Takeout/Google Photos/a.jpg", "jpeg-bytes"),
	testsupport.Text("Takeout/Google Photos/a.jpg.json", `{"title":"a.jpg"}`),
	testsupport.Text("./Takeout/Drive/notes.txt", "hello"),
}

func TestWalkAcrossContainerKinds(t *testing.T) {
	dir := t.TempDir()
	want := []string{
		"Takeout/Drive/notes.txt",
		"Takeout/Google Photos/a.jpg",
		"Takeout/Google Photos/a.jpg.json",
	}

	tests := []struct {
		name string
		path string
		kind source.Kind
	}{
		{"zip", testsupport.WriteZip(t, filepath.Join(dir, "t.zip"), fixtureEntries...), source.KindZip},
		{"tar", testsupport.WriteTar(t, filepath.Join(dir, "t.tar"), testsupport.NoCompression, fixtureEntries...), source.KindTar},
		{"tgz", testsupport.WriteTar(t, filepath.Join(dir, "t.tgz"), testsupport.Gzip, fixtureEntries...), source.KindTarGzip},
		{"tar.gz", testsupport.WriteTar(t, filepath.Join(dir, "t.tar.gz"), testsupport.Gzip, fixtureEntries...), source.KindTarGzip},
		{"tar.zst", testsupport.WriteTar(t, filepath.Join(dir, "t.tar.zst"), testsupport.Zstd, fixtureEntries...), source.KindTarZstd},
		{"directory", testsupport.WriteTree(t, filepath.Join(dir, "tree"), fixtureEntries[2:]...), source.KindDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := source.Open(tt.path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer src.Close()

			if src.Kind() != tt.kind {
				t.Fatalf("kind = %q, want %q", src.Kind(), tt.kind)
			}

			var got []string
			contents := map[string]string{}
			err = src.Walk(func(m source.Member) error {
				got = append(got, m.Path)
				rc, err := m.Open()
				if err != nil {
					return err
				}
				defer rc.Close()
				data, err := io.ReadAll(rc)
				if err != nil {
					return err
				}
				if int64(len(data)) != m.Size {
					t.Errorf("%s: size %d, read %d bytes", m.Path, m.Size, len(data))
				}
				contents[m.Path] = string(data)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}
			slices.Sort(got)
			if !slices.Equal(got, want) {
				t.Fatalf("members = %v, want %v", got, want)
			}
			if contents["Takeout/Drive/notes.txt"] != "hello" {
				t.Fatalf("unexpected content: %q", contents["Takeout/Drive/notes.txt"])
			}
		})
	}
}

func TestTarMemberCannotBeOpenedAfterCallback(t *testing.T) {
	path := testsupport.WriteTar(t, filepath.Join(t.TempDir(), "t.tar"), testsupport.NoCompression, fixtureEntries...)
	src, err := source.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	members, err := source.Collect(src)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	if _, err := members[0].Open(); !errors.Is(err, source.ErrMemberRead) {
		t.Fatalf("expected ErrMemberRead, got %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(corrupt, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	unsupported := filepath.Join(dir, "notes.rar")
	if err := os.WriteFile(unsupported, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := source.Open(corrupt); !errors.Is(err, source.ErrArchiveRead) {
		t.Fatalf("corrupt zip: expected ErrArchiveRead, got %v", err)
	}
	if _, err := source.Open(unsupported); !errors.Is(err, source.ErrUnsupported) {
		t.Fatalf("rar: expected ErrUnsupported, got %v", err)
	}
	if _, err := source.Open(filepath.Join(dir, "missing.zip")); !errors.Is(err, source.ErrArchiveRead) {
		t.Fatalf("missing: expected ErrArchiveRead, got %v", err)
	}
}

func TestCorruptGzipFailsDuringWalk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tgz")
	if err := os.WriteFile(path, []byte("definitely not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := source.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = src.Walk(func(source.Member) error { return nil })
	if !errors.Is(err, source.ErrArchiveRead) {
		t.Fatalf("expected ErrArchiveRead, got %v", err)
	}
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "t.zip"), fixtureEntries...)
	src, err := source.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	stop := errors.New("stop")
	calls := 0
	err = src.Walk(func(source.Member) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("expected single call and stop error, got calls=%d err=%v", calls, err)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"./Takeout/a.jpg":     "Takeout/a.jpg",
		"/abs/b.png":          "abs/b.png",
		`Takeout\Drive\c.txt`: "Takeout/Drive/c.txt",
		"Cafe\u0301.jpg":      "Caf\u00e9.jpg",
		".hidden/d.json":      ".hidden/d.json",
	}
	for in, want := range tests {
		if got := source.NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
