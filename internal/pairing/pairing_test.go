package pairing

import (
	"testing"

	"takeoutscout/internal/takeout"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []File
		want  []takeout.MediaPair
	}{
		{
			name:  "live photo mixed case",
			files: []File{{"a.HEIC", 10}, {"a.MOV", 20}},
			want: []takeout.MediaPair{
				{Type: takeout.PairLivePhoto, PrimaryPath: "a.HEIC", CompanionPath: "a.MOV", PrimarySize: 10, CompanionSize: 20, BaseName: "a"},
			},
		},
		{
			name:  "photo with sidecar",
			files: []File{{"b.jpg", 5}, {"b.jpg.json", 1}},
			want: []takeout.MediaPair{
				{Type: takeout.PairPhotoJSON, PrimaryPath: "b.jpg", CompanionPath: "b.jpg.json", PrimarySize: 5, CompanionSize: 1, BaseName: "b"},
			},
		},
		{
			name:  "unrelated singletons",
			files: []File{{"x.jpg", 1}, {"y.mov", 1}, {"z.json", 1}},
		},
		{
			name:  "different directories never pair",
			files: []File{{"one/c.heic", 1}, {"two/c.mov", 1}},
		},
		{
			name:  "sidecar without matching photo name",
			files: []File{{"d.jpg", 1}, {"d.png.json", 1}},
		},
		{
			name: "live photo wins and sidecar goes to nothing",
			files: []File{
				{"Photos/e.jpg.json", 1},
				{"Photos/e.jpg", 2},
				{"Photos/e.mov", 3},
			},
			want: []takeout.MediaPair{
				{Type: takeout.PairLivePhoto, PrimaryPath: "Photos/e.jpg", CompanionPath: "Photos/e.mov", PrimarySize: 2, CompanionSize: 3, BaseName: "e"},
			},
		},
		{
			name: "heic beats jpg for live still and jpg keeps its sidecar",
			files: []File{
				{"f.jpg", 1},
				{"f.heic", 2},
				{"f.mp4", 3},
				{"f.jpg.json", 4},
			},
			want: []takeout.MediaPair{
				{Type: takeout.PairLivePhoto, PrimaryPath: "f.heic", CompanionPath: "f.mp4", PrimarySize: 2, CompanionSize: 3, BaseName: "f"},
				{Type: takeout.PairPhotoJSON, PrimaryPath: "f.jpg", CompanionPath: "f.jpg.json", PrimarySize: 1, CompanionSize: 4, BaseName: "f"},
			},
		},
		{
			name: "raw plus jpeg plus mov",
			files: []File{
				{"g.dng", 9},
				{"g.jpeg", 2},
				{"g.mov", 3},
				{"g.dng.json", 1},
			},
			want: []takeout.MediaPair{
				{Type: takeout.PairLivePhoto, PrimaryPath: "g.jpeg", CompanionPath: "g.mov", PrimarySize: 2, CompanionSize: 3, BaseName: "g"},
				{Type: takeout.PairPhotoJSON, PrimaryPath: "g.dng", CompanionPath: "g.dng.json", PrimarySize: 9, CompanionSize: 1, BaseName: "g"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.files)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d pairs %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("pair %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectIsOrderIndependent(t *testing.T) {
	forward := []File{{"h.jpg", 1}, {"h.JPG", 2}, {"h.mov", 3}, {"h.jpg.json", 4}, {"h.JPG.json", 5}}
	reverse := make([]File, len(forward))
	for i, f := range forward {
		reverse[len(forward)-1-i] = f
	}

	a := Detect(forward)
	b := Detect(reverse)
	if len(a) != len(b) {
		t.Fatalf("pair counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pair %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEachFileClaimedOnce(t *testing.T) {
	files := []File{
		{"i.heic", 1}, {"i.jpg", 1}, {"i.mov", 1}, {"i.mp4", 1},
		{"i.heic.json", 1}, {"i.jpg.json", 1}, {"i.png", 1}, {"i.png.json", 1},
	}
	seen := map[string]bool{}
	for _, p := range Detect(files) {
		for _, path := range []string{p.PrimaryPath, p.CompanionPath} {
			if seen[path] {
				t.Fatalf("%s claimed twice", path)
			}
			seen[path] = true
		}
	}
}

func TestRoles(t *testing.T) {
	pairs := Detect([]File{{"a.heic", 1}, {"a.mov", 1}, {"b.jpg", 1}, {"b.jpg.json", 1}})
	roles := Roles(pairs)
	want := map[string]Role{
		"a.heic":     RoleLivePhoto,
		"a.mov":      RoleLivePhotoVideo,
		"b.jpg":      RolePhotoJSON,
		"b.jpg.json": RoleJSONSidecar,
	}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v", roles)
	}
	for path, role := range want {
		if roles[path] != role {
			t.Fatalf("role[%s] = %q, want %q", path, roles[path], role)
		}
	}
}

func TestGroupKey(t *testing.T) {
	tests := map[string]string{
		"Takeout/Photos/IMG_1.jpg":      "Takeout/Photos/IMG_1",
		"Takeout/Photos/IMG_1.jpg.json": "Takeout/Photos/IMG_1",
		"Takeout/Photos/IMG_1.JSON":     "Takeout/Photos/IMG_1",
		"top.heic":                      "./top",
		".json":                         "./",
	}
	for in, want := range tests {
		if got := groupKey(in); got != want {
			t.Errorf("groupKey(%q) = %q, want %q", in, got, want)
		}
	}
}
