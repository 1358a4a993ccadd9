package discovery

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIdentityFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "takeout-20240101T000000Z-001.zip")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := Identity(path)
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	resolved, _ := ResolvePath(path)
	sum := md5.Sum([]byte(resolved))
	want := "takeout-20240101T000000Z-001_" + hex.EncodeToString(sum[:])[:12]
	if id != want {
		t.Fatalf("Identity = %q, want %q", id, want)
	}
}

func TestIdentityDirectoryKeepsFullName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Takeout.old")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	id, err := Identity(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "Takeout.old_") {
		t.Fatalf("directory identity should keep its extension-like suffix, got %q", id)
	}
}

func TestIdentityStableAndDistinct(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "export.zip")
	b := filepath.Join(root, "b", "export.zip")

	idA1, _ := Identity(a)
	idA2, _ := Identity(filepath.Join(root, "a", ".", "export.zip"))
	idB, _ := Identity(b)

	if idA1 != idA2 {
		t.Fatalf("identity not stable: %q vs %q", idA1, idA2)
	}
	if idA1 == idB {
		t.Fatalf("same-named sources in different folders collided: %q", idA1)
	}
	if len(idA1) != len("export_")+identitySuffixLen {
		t.Fatalf("unexpected identity length: %q", idA1)
	}
}

func TestIdentityFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.zip")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.zip")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	viaLink, _ := Identity(link)
	direct, _ := Identity(target)
	if viaLink != direct {
		t.Fatalf("symlink identity %q differs from target %q", viaLink, direct)
	}
}

func TestIdentitySanitizesName(t *testing.T) {
	id := identityFor("/data/what?*.zip")
	if !strings.HasPrefix(id, "what__") {
		t.Fatalf("expected sanitized prefix, got %q", id)
	}
}

func TestIdentityIgnoresWhetherSourceExists(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		prefix string
	}{
		{name: "directory", base: "takeout.2024", prefix: "takeout.2024_"},
		{name: "zip", base: "export.zip", prefix: "export_"},
		{name: "compound tar", base: "export.tar.gz", prefix: "export_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.base)
			if err := os.Mkdir(path, 0o755); err != nil {
				t.Fatal(err)
			}
			present, _ := Identity(path)
			if err := os.Remove(path); err != nil {
				t.Fatal(err)
			}
			absent, _ := Identity(path)
			if present != absent {
				t.Fatalf("identity changed after removal: %q vs %q", present, absent)
			}
			if !strings.HasPrefix(present, tt.prefix) {
				t.Fatalf("Identity = %q, want prefix %q", present, tt.prefix)
			}
		})
	}
}
