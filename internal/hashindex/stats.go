package hashindex

import (
	"cmp"
	"slices"
)

// Stats summarizes duplication across the index.
type Stats struct {
	TotalFiles     int   `json:"total_files"`
	UniqueHashes   int   `json:"unique_hashes"`
	DuplicateSets  int   `json:"duplicate_sets"`
	DuplicateFiles int   `json:"duplicate_files"`
	WastedBytes    int64 `json:"wasted_bytes"`
}

// DuplicateSet is one hash shared by several files. Kept is the largest
// entry; Wasted is the summed size of all others.
type DuplicateSet struct {
	Hash    string  `json:"hash"`
	Entries []Entry `json:"entries"`
	Kept    Entry   `json:"kept"`
	Wasted  int64   `json:"wasted_bytes"`
}

func newDuplicateSet(hash string, entries []Entry) DuplicateSet {
	kept := 0
	var total int64
	for idx, e := range entries {
		total += e.Size
		if e.Size > entries[kept].Size {
			kept = idx
		}
	}
	return DuplicateSet{
		Hash:    hash,
		Entries: entries,
		Kept:    entries[kept],
		Wasted:  total - entries[kept].Size,
	}
}

// DuplicateSets returns all duplicate sets, most wasted bytes first, ties
// broken by hash.
func (i *Index) DuplicateSets() []DuplicateSet {
	dupes := i.FindAllDuplicates()
	sets := make([]DuplicateSet, 0, len(dupes))
	for h, entries := range dupes {
		sets = append(sets, newDuplicateSet(h, entries))
	}
	slices.SortFunc(sets, func(a, b DuplicateSet) int {
		if c := cmp.Compare(b.Wasted, a.Wasted); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
	return sets
}

// Stats computes duplicate statistics for the whole index.
func (i *Index) Stats() Stats {
	i.mu.RLock()
	s := Stats{TotalFiles: len(i.byKey), UniqueHashes: len(i.byHash)}
	i.mu.RUnlock()

	for _, set := range i.DuplicateSets() {
		s.DuplicateSets++
		s.DuplicateFiles += len(set.Entries) - 1
		s.WastedBytes += set.Wasted
	}
	return s
}
