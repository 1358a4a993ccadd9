package takeout

import (
	"testing"

	"takeoutscout/internal/classify"
)

func TestNewFileDetailClassifies(t *testing.T) {
	d := NewFileDetail("Takeout/Google Photos/IMG_0001.HEIC", 42)
	if d.Category != classify.CategoryPhoto {
		t.Fatalf("category = %q, want photo", d.Category)
	}
	if d.Extension != ".heic" {
		t.Fatalf("extension = %q, want .heic", d.Extension)
	}
	if d.Size != 42 {
		t.Fatalf("size = %d", d.Size)
	}
}

func TestSidecarTimePrefersPhotoTaken(t *testing.T) {
	d := FileDetail{CreationTime: "2020-01-01T00:00:00Z"}
	if got := d.SidecarTime(); got != "2020-01-01T00:00:00Z" {
		t.Fatalf("fallback to creation time failed: %q", got)
	}
	d.PhotoTakenTime = "2019-05-05T10:00:00Z"
	if got := d.SidecarTime(); got != "2019-05-05T10:00:00Z" {
		t.Fatalf("expected photo taken time, got %q", got)
	}
}

func TestPairCounts(t *testing.T) {
	pairs := []MediaPair{
		{Type: PairLivePhoto, PrimarySize: 3, CompanionSize: 4},
		{Type: PairPhotoJSON},
		{Type: PairPhotoJSON},
	}
	counts := PairCounts(pairs)
	if counts[PairLivePhoto] != 1 || counts[PairPhotoJSON] != 2 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if pairs[0].TotalSize() != 7 {
		t.Fatalf("total size = %d", pairs[0].TotalSize())
	}
	if empty := PairCounts(nil); empty[PairLivePhoto] != 0 || len(empty) != 2 {
		t.Fatalf("expected zeroed counts, got %v", empty)
	}
}
