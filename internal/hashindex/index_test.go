package hashindex

import (
	"testing"
)

func TestFindAllDuplicatesAndStats(t *testing.T) {
	idx := New()
	idx.Add("aaa", Entry{SourceID: "s1", Path: "a.jpg", Size: 100})
	idx.Add("aaa", Entry{SourceID: "s2", Path: "a.jpg", Size: 300})
	idx.Add("aaa", Entry{SourceID: "s3", Path: "copy/a.jpg", Size: 200})
	idx.Add("bbb", Entry{SourceID: "s1", Path: "b.jpg", Size: 50})
	idx.Add("ccc", Entry{SourceID: "s1", Path: "c.mov", Size: 10})
	idx.Add("ccc", Entry{SourceID: "s2", Path: "c.mov", Size: 10})

	dupes := idx.FindAllDuplicates()
	if len(dupes) != 2 {
		t.Fatalf("expected 2 duplicate hashes, got %d", len(dupes))
	}
	if _, ok := dupes["bbb"]; ok {
		t.Fatal("singleton hash reported as duplicate")
	}

	stats := idx.Stats()
	want := Stats{TotalFiles: 6, UniqueHashes: 3, DuplicateSets: 2, DuplicateFiles: 3, WastedBytes: 100 + 200 + 10}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}

	sets := idx.DuplicateSets()
	if sets[0].Hash != "aaa" {
		t.Fatalf("expected largest waste first, got %s", sets[0].Hash)
	}
	if sets[0].Kept.SourceID != "s2" || sets[0].Wasted != 300 {
		t.Fatalf("kept = %+v wasted = %d", sets[0].Kept, sets[0].Wasted)
	}
	if sets[1].Kept.SourceID != "s1" {
		t.Fatalf("size tie must keep first inserted, got %+v", sets[1].Kept)
	}
}

func TestWastedBytesIsSumMinusMax(t *testing.T) {
	sizes := []int64{5, 90, 17, 90, 1}
	idx := New()
	var sum, maxSize int64
	for i, s := range sizes {
		idx.Add("h", Entry{SourceID: "s", Path: string(rune('a' + i)), Size: s})
		sum += s
		maxSize = max(maxSize, s)
	}
	if got := idx.Stats().WastedBytes; got != sum-maxSize {
		t.Fatalf("wasted = %d, want %d", got, sum-maxSize)
	}
}

func TestReAddOverwritesInPlace(t *testing.T) {
	idx := New()
	idx.Add("old", Entry{SourceID: "s", Path: "p.jpg", Size: 1})
	idx.Add("old", Entry{SourceID: "t", Path: "p.jpg", Size: 1})

	idx.Add("old", Entry{SourceID: "s", Path: "p.jpg", Size: 2})
	if got := idx.Entries("old"); len(got) != 2 || got[0].Size != 2 {
		t.Fatalf("same-hash re-add should update in place, got %+v", got)
	}

	idx.Add("new", Entry{SourceID: "s", Path: "p.jpg", Size: 3})
	if got := idx.Entries("old"); len(got) != 1 || got[0].SourceID != "t" {
		t.Fatalf("old hash list should lose the moved entry, got %+v", got)
	}
	if h, ok := idx.Lookup("s", "p.jpg"); !ok || h != "new" {
		t.Fatalf("lookup = %q %v", h, ok)
	}
	if idx.Len() != 2 {
		t.Fatalf("len = %d", idx.Len())
	}

	idx.Add("new", Entry{SourceID: "t", Path: "p.jpg", Size: 1})
	if len(idx.Entries("old")) != 0 {
		t.Fatal("emptied hash should disappear")
	}
	if idx.Stats().UniqueHashes != 1 {
		t.Fatalf("unique hashes = %d", idx.Stats().UniqueHashes)
	}
}

func TestMergeAndRemoveSource(t *testing.T) {
	a := New()
	a.Add("h1", Entry{SourceID: "s1", Path: "x", Size: 1})
	b := New()
	b.Add("h1", Entry{SourceID: "s2", Path: "x", Size: 1})
	b.Add("h2", Entry{SourceID: "s2", Path: "y", Size: 4})

	a.Merge(b)
	if a.Len() != 3 || len(a.FindAllDuplicates()) != 1 {
		t.Fatalf("merge produced len=%d dupes=%d", a.Len(), len(a.FindAllDuplicates()))
	}

	a.RemoveSource("s2")
	if a.Len() != 1 {
		t.Fatalf("len after remove = %d", a.Len())
	}
	if _, ok := a.Lookup("s2", "y"); ok {
		t.Fatal("removed entry still resolvable")
	}
	if len(a.Entries("h2")) != 0 {
		t.Fatal("removed hash still listed")
	}
	if recs := a.Records(); len(recs) != 1 || recs[0].Hash != "h1" || recs[0].SourceID != "s1" {
		t.Fatalf("records = %+v", recs)
	}
}
