package scan_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"takeoutscout/internal/discovery"
	"takeoutscout/internal/hashindex"
	"takeoutscout/internal/scan"
	"takeoutscout/internal/takeout"
	"takeoutscout/internal/testsupport"
)

const photoSidecar = `{
  "title": "b.jpg",
  "photoTakenTime": {"timestamp": "1700000000", "formatted": "Nov 14, 2023"},
  "creationTime": {"timestamp": "1700000100", "formatted": "Nov 14, 2023"},
  "geoData": {"latitude": 48.85, "longitude": 2.35, "altitude": 35.0}
}`

func photosEntries() []testsupport.Entry {
	return []testsupport.Entry{
		testsupport.Text("Takeout/Google Photos/Trip/a.HEIC", "IMG-heic"),
		testsupport.Text("Takeout/Google Photos/Trip/a.MOV", "movie-bytes"),
		testsupport.Text("Takeout/Google Photos/Trip/b.jpg", "IMG-jpeg"),
		testsupport.Text("Takeout/Google Photos/Trip/b.jpg.json", photoSidecar),
		testsupport.Text("Takeout/Google Photos/Trip/c.png", "not an image"),
		testsupport.Text("Takeout/Google Photos/Trip/metadata.json", `{"title":"Trip"}`),
		testsupport.Text("Takeout/archive_browser.html", "<html></html>"),
	}
}

// fakeExtractor reports metadata for payloads starting with "IMG".
type fakeExtractor struct {
	seen map[string]int
}

func (f *fakeExtractor) Extract(data []byte) (*takeout.PhotoMetadata, bool) {
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[string(data)]++
	if !bytes.HasPrefix(data, []byte("IMG")) {
		return nil, false
	}
	return &takeout.PhotoMetadata{HasEXIF: true, HasDateTime: true, DateTimeOriginal: "2023:11:14 22:13:22"}, true
}

type failingStore struct{}

func (failingStore) Save(*discovery.Record) (*discovery.Record, error) {
	return nil, fmt.Errorf("%w: disk full", discovery.ErrPersist)
}

type recordingSink struct {
	calls   int
	source  string
	alg     hashindex.Algorithm
	records []hashindex.Record
}

func (r *recordingSink) ReplaceSource(_ context.Context, sourceID string, alg hashindex.Algorithm, records []hashindex.Record) error {
	r.calls++
	r.source, r.alg, r.records = sourceID, alg, records
	return nil
}

func newScanner(t *testing.T, opts scan.Options, extra ...scan.Option) *scan.Scanner {
	t.Helper()
	s, err := scan.New(opts, extra...)
	if err != nil {
		t.Fatalf("scan.New: %v", err)
	}
	return s
}

func TestScanZipCountsByCategory(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteZip(t, filepath.Join(dir, "takeout-20240101T120000Z-001.zip"), photosEntries()...)

	s := newScanner(t, scan.Options{})
	summary, err := s.Scan(context.Background(), path)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !summary.OK() {
		t.Fatalf("status = %q (%s)", summary.Status, summary.Error)
	}
	if summary.FileCount != 7 || summary.Photos != 3 || summary.Videos != 1 || summary.JSONSidecars != 2 || summary.Other != 1 {
		t.Fatalf("unexpected counts: %+v", summary.Stats)
	}
	if summary.Photos+summary.Videos+summary.JSONSidecars+summary.Other != summary.FileCount {
		t.Fatal("category counts do not sum to file count")
	}
	if summary.ServiceGuess != "Google Photos" {
		t.Fatalf("ServiceGuess = %q", summary.ServiceGuess)
	}
	if summary.PartsGroup != "takeout-20240101T120000Z" {
		t.Fatalf("PartsGroup = %q", summary.PartsGroup)
	}
	if summary.SourceType != "zip" || summary.ScanID == "" {
		t.Fatalf("SourceType=%q ScanID=%q", summary.SourceType, summary.ScanID)
	}
	info, _ := os.Stat(path)
	if summary.CompressedSize != info.Size() {
		t.Fatalf("CompressedSize = %d, want %d", summary.CompressedSize, info.Size())
	}
	if summary.LivePhotos != 1 || summary.PhotoJSONPairs != 1 {
		t.Fatalf("pair counts live=%d json=%d", summary.LivePhotos, summary.PhotoJSONPairs)
	}
	if summary.MediaWithSidecar != 0 {
		t.Fatal("sidecars resolved although parsing is disabled")
	}
}

func TestScanResolvesSidecarsAcrossContainers(t *testing.T) {
	dir := t.TempDir()
	paths := map[string]string{
		"zip":       testsupport.WriteZip(t, filepath.Join(dir, "photos.zip"), photosEntries()...),
		"tgz":       testsupport.WriteTar(t, filepath.Join(dir, "photos.tgz"), testsupport.Gzip, photosEntries()...),
		"tzst":      testsupport.WriteTar(t, filepath.Join(dir, "photos.tar.zst"), testsupport.Zstd, photosEntries()...),
		"directory": testsupport.WriteTree(t, filepath.Join(dir, "unpacked"), photosEntries()...),
	}

	for kind, path := range paths {
		t.Run(kind, func(t *testing.T) {
			extractor := &fakeExtractor{}
			s := newScanner(t, scan.Options{ParseSidecars: true, ExtractMetadata: true}, scan.WithExtractor(extractor))
			result, err := s.ScanDetailed(context.Background(), path)
			if err != nil {
				t.Fatalf("ScanDetailed: %v", err)
			}
			if result.Summary.SourceType != kind {
				t.Fatalf("SourceType = %q, want %q", result.Summary.SourceType, kind)
			}

			var b *takeout.FileDetail
			for i := range result.Details {
				if result.Details[i].Path == "Takeout/Google Photos/Trip/b.jpg" {
					b = &result.Details[i]
				}
			}
			if b == nil {
				t.Fatal("b.jpg missing from details")
			}
			if b.SidecarPath != "Takeout/Google Photos/Trip/b.jpg.json" {
				t.Fatalf("SidecarPath = %q", b.SidecarPath)
			}
			if b.PhotoTakenTime != "2023-11-14T22:13:20Z" || b.CreationTime != "2023-11-14T22:15:00Z" {
				t.Fatalf("times = %q / %q", b.PhotoTakenTime, b.CreationTime)
			}
			if !b.HasSidecarGeo {
				t.Fatal("expected sidecar geo")
			}
			if b.Metadata == nil || !b.Metadata.HasEXIF {
				t.Fatalf("metadata not extracted: %+v", b.Metadata)
			}

			st := result.Summary.Stats
			if st.MediaWithSidecar != 1 || st.MediaWithSidecarDate != 1 || st.MediaWithSidecarGeo != 1 {
				t.Fatalf("sidecar coverage: %+v", st)
			}
			if st.PhotosChecked != 2 || st.PhotosWithEXIF != 2 || st.PhotosWithDateTime != 2 {
				t.Fatalf("metadata coverage: checked=%d exif=%d dt=%d", st.PhotosChecked, st.PhotosWithEXIF, st.PhotosWithDateTime)
			}
			if extractor.seen["not an image"] != 1 {
				t.Fatal("extractor should still be offered non-image photo bytes")
			}
			if len(result.Pairs) != 2 {
				t.Fatalf("pairs = %+v", result.Pairs)
			}
		})
	}
}

func TestScanDirectoryUsesFolderNameAndTotalSize(t *testing.T) {
	root := testsupport.WriteTree(t, filepath.Join(t.TempDir(), "Takeout 2024"),
		testsupport.Text("Google Drive/doc.txt", "12345"),
		testsupport.Text("Google Drive/pic.jpg", "123"),
	)
	summary, err := newScanner(t, scan.Options{}).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.PartsGroup != "Takeout 2024" {
		t.Fatalf("PartsGroup = %q", summary.PartsGroup)
	}
	if summary.TotalSize != 8 || summary.CompressedSize != 8 {
		t.Fatalf("sizes total=%d compressed=%d", summary.TotalSize, summary.CompressedSize)
	}
	if summary.ServiceGuess != "Google Drive" {
		t.Fatalf("ServiceGuess = %q", summary.ServiceGuess)
	}
}

func TestScanHashesMatchAcrossContainers(t *testing.T) {
	dir := t.TempDir()
	entries := []testsupport.Entry{
		testsupport.Text("Takeout/Google Photos/x.jpg", "same bytes"),
		testsupport.Text("Takeout/Google Photos/y.jpg", "same bytes"),
		testsupport.Text("Takeout/Google Photos/z.jpg", "other"),
	}
	zipPath := testsupport.WriteZip(t, filepath.Join(dir, "a.zip"), entries...)
	tarPath := testsupport.WriteTar(t, filepath.Join(dir, "b.tar"), testsupport.NoCompression, entries...)

	index := hashindex.New()
	sink := &recordingSink{}
	s := newScanner(t, scan.Options{ComputeHashes: true, HashAlgorithm: "sha256", HashChunkSize: 4},
		scan.WithHashIndex(index), scan.WithHashSink(sink))

	summaries, err := s.ScanBatch(context.Background(), []string{zipPath, tarPath})
	if err != nil {
		t.Fatalf("ScanBatch: %v", err)
	}
	for _, summary := range summaries {
		if summary.HashedFiles != 3 {
			t.Fatalf("%s: HashedFiles = %d", summary.Path, summary.HashedFiles)
		}
	}

	stats := index.Stats()
	if stats.TotalFiles != 6 || stats.UniqueHashes != 2 || stats.DuplicateSets != 2 {
		t.Fatalf("index stats = %+v", stats)
	}
	if stats.DuplicateFiles != 4 {
		t.Fatalf("DuplicateFiles = %d, want 4", stats.DuplicateFiles)
	}
	if sink.calls != 2 || sink.alg != hashindex.SHA256 || len(sink.records) != 3 {
		t.Fatalf("sink calls=%d alg=%s records=%d", sink.calls, sink.alg, len(sink.records))
	}

	// Rescanning a source replaces its entries instead of adding more.
	if _, err := s.Scan(context.Background(), zipPath); err != nil {
		t.Fatal(err)
	}
	if got := index.Len(); got != 6 {
		t.Fatalf("index grew on rescan: %d", got)
	}
}

func TestScanPersistsAndMergesDiscovery(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := discovery.Open(cfg.Paths.DiscoveriesDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := testsupport.WriteZip(t, filepath.Join(testsupport.BaseDir(cfg), "takeout.zip"), photosEntries()...)

	clock := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	s := newScanner(t, scan.OptionsFromConfig(cfg),
		scan.WithDiscoveryStore(store),
		scan.WithClock(func() time.Time { return clock }),
	)

	first, err := s.ScanDetailed(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if first.Record == nil || first.Record.ScanCount != 1 {
		t.Fatalf("first record = %+v", first.Record)
	}

	clock = clock.Add(24 * time.Hour)
	second, err := s.ScanDetailed(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if second.Record.ScanCount != 2 {
		t.Fatalf("ScanCount = %d, want 2", second.Record.ScanCount)
	}
	if !second.Record.FirstDiscovered.Equal(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("FirstDiscovered = %v", second.Record.FirstDiscovered)
	}

	loaded := store.Load(path)
	if loaded == nil || loaded.FileCount != 7 || len(loaded.FileDetails) != 7 || len(loaded.MediaPairs) != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.ScanID != second.Summary.ScanID {
		t.Fatalf("record scan id %q, summary %q", loaded.ScanID, second.Summary.ScanID)
	}
}

func TestScanPersistFailurePropagates(t *testing.T) {
	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "a.zip"), testsupport.Text("x.jpg", "x"))
	s := newScanner(t, scan.Options{SaveDiscovery: true}, scan.WithDiscoveryStore(failingStore{}))

	summary, err := s.Scan(context.Background(), path)
	if !errors.Is(err, discovery.ErrPersist) {
		t.Fatalf("err = %v, want ErrPersist", err)
	}
	if summary == nil || summary.FileCount != 1 {
		t.Fatalf("summary should still be returned: %+v", summary)
	}
}

func TestScanDegradedSources(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken-001.zip")
	if err := os.WriteFile(corrupt, []byte("definitely not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "broken.tgz")
	if err := os.WriteFile(truncated, []byte{0x1f, 0x8b, 0x08, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	rar := filepath.Join(dir, "photos.rar")
	if err := os.WriteFile(rar, []byte("rar"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path    string
		status  string
		service string
		group   string
	}{
		{corrupt, takeout.StatusError, takeout.ServiceError, "broken"},
		{truncated, takeout.StatusError, takeout.ServiceError, "broken"},
		{rar, takeout.StatusUnsupported, takeout.ServiceUnsupported, "photos"},
		{filepath.Join(dir, "missing.zip"), takeout.StatusError, takeout.ServiceError, "missing"},
	}
	s := newScanner(t, scan.Options{SaveDiscovery: true}, scan.WithDiscoveryStore(failingStore{}))
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			summary, err := s.Scan(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("degraded scan must not error: %v", err)
			}
			if summary.Status != tt.status || summary.ServiceGuess != tt.service {
				t.Fatalf("status=%q service=%q", summary.Status, summary.ServiceGuess)
			}
			if summary.PartsGroup != tt.group {
				t.Fatalf("PartsGroup = %q, want %q", summary.PartsGroup, tt.group)
			}
			if summary.FileCount != 0 || summary.Error == "" {
				t.Fatalf("expected zero counts and an error marker: %+v", summary)
			}
		})
	}
}

func TestScanBatchContinuesPastBadSources(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.zip")
	if err := os.WriteFile(bad, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := testsupport.WriteZip(t, filepath.Join(dir, "good.zip"), testsupport.Text("a.mp4", "v"))

	summaries, err := newScanner(t, scan.Options{}).ScanBatch(context.Background(), []string{bad, good})
	if err != nil {
		t.Fatalf("ScanBatch: %v", err)
	}
	if len(summaries) != 2 || summaries[0].OK() || !summaries[1].OK() || summaries[1].Videos != 1 {
		t.Fatalf("unexpected batch result: %+v %+v", summaries[0], summaries[1])
	}
}

// cancellingStore cancels the batch context after the first save.
type cancellingStore struct {
	cancel context.CancelFunc
	saved  int
}

func (c *cancellingStore) Save(rec *discovery.Record) (*discovery.Record, error) {
	c.saved++
	c.cancel()
	return rec, nil
}

func TestScanBatchCancelsBetweenSources(t *testing.T) {
	dir := t.TempDir()
	first := testsupport.WriteZip(t, filepath.Join(dir, "one.zip"), testsupport.Text("a.jpg", "a"))
	second := testsupport.WriteZip(t, filepath.Join(dir, "two.zip"), testsupport.Text("b.jpg", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancellingStore{cancel: cancel}
	s := newScanner(t, scan.Options{SaveDiscovery: true}, scan.WithDiscoveryStore(store))

	summaries, err := s.ScanBatch(ctx, []string{first, second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(summaries) != 1 || store.saved != 1 {
		t.Fatalf("completed=%d saved=%d, want 1/1", len(summaries), store.saved)
	}
}

func TestNewRejectsUnknownHashAlgorithm(t *testing.T) {
	if _, err := scan.New(scan.Options{ComputeHashes: true, HashAlgorithm: "crc32"}); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestMetadataReadLimitBoundsCapture(t *testing.T) {
	payload := "IMG" + string(bytes.Repeat([]byte("x"), 100))
	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "a.zip"), testsupport.Text("big.jpg", payload))

	extractor := &fakeExtractor{}
	s := newScanner(t, scan.Options{ExtractMetadata: true, ComputeHashes: true, MetadataReadLimit: 10},
		scan.WithExtractor(extractor))
	result, err := s.ScanDetailed(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if extractor.seen[payload[:10]] != 1 {
		t.Fatalf("extractor saw %v, want only the first 10 bytes", extractor.seen)
	}
	if result.Details[0].Hash == "" {
		t.Fatal("hash must cover the full member even when capture is bounded")
	}
}

func TestOversizedJSONIsNotParsed(t *testing.T) {
	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "a.zip"),
		testsupport.Text("p.jpg", "IMG"),
		testsupport.Text("p.jpg.json", photoSidecar),
	)
	s := newScanner(t, scan.Options{ParseSidecars: true, SidecarMaxBytes: 16})
	result, err := s.ScanDetailed(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	d := result.Details[0]
	if d.SidecarPath != "p.jpg.json" {
		t.Fatalf("sidecar should still be linked, got %q", d.SidecarPath)
	}
	if d.PhotoTakenTime != "" {
		t.Fatalf("oversized sidecar was parsed: %q", d.PhotoTakenTime)
	}
}

func noisyBytes(n int) []byte {
	out := make([]byte, n)
	x := uint32(2463534242)
	for i := range out {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		out[i] = byte(x)
	}
	return out
}

// corruptMember flips bytes in the middle of a member's compressed data.
func corruptMember(t *testing.T, archive, member string) {
	t.Helper()
	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatal(err)
	}
	var offset, size int64
	for _, f := range zr.File {
		if f.Name != member {
			continue
		}
		if offset, err = f.DataOffset(); err != nil {
			t.Fatal(err)
		}
		size = int64(f.CompressedSize64)
	}
	zr.Close()
	if size == 0 {
		t.Fatalf("member %s not found in %s", member, archive)
	}

	f, err := os.OpenFile(archive, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	garbage := bytes.Repeat([]byte{0xFF}, 16)
	if _, err := f.WriteAt(garbage, offset+size/2); err != nil {
		t.Fatal(err)
	}
}

func TestScanZipCorruptMemberKeepsPathAndSize(t *testing.T) {
	dir := t.TempDir()
	video := noisyBytes(64 << 10)
	path := testsupport.WriteZip(t, filepath.Join(dir, "takeout-corrupt.zip"),
		testsupport.Text("Takeout/Google Photos/x1.jpg", "first photo"),
		testsupport.Text("Takeout/Google Photos/x2.jpg", "second photo"),
		testsupport.Entry{Name: "Takeout/Google Photos/y.mp4", Data: video},
	)
	corruptMember(t, path, "Takeout/Google Photos/y.mp4")

	s := newScanner(t, scan.Options{ComputeHashes: true, HashAlgorithm: "xxh64"})
	result, err := s.ScanDetailed(context.Background(), path)
	if err != nil {
		t.Fatalf("ScanDetailed: %v", err)
	}

	summary := result.Summary
	if summary.Status != takeout.StatusOK {
		t.Fatalf("status = %q (%s)", summary.Status, summary.Error)
	}
	if summary.FileCount != 3 || summary.HashedFiles != 2 {
		t.Fatalf("FileCount=%d HashedFiles=%d, want 3 and 2", summary.FileCount, summary.HashedFiles)
	}
	for _, d := range result.Details {
		switch d.Path {
		case "Takeout/Google Photos/y.mp4":
			if d.Hash != "" {
				t.Fatalf("corrupt member hashed: %q", d.Hash)
			}
			if d.Size != int64(len(video)) {
				t.Fatalf("corrupt member size = %d, want %d", d.Size, len(video))
			}
		default:
			if d.Hash == "" {
				t.Fatalf("intact member %s not hashed", d.Path)
			}
		}
	}
}
