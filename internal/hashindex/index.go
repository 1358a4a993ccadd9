package hashindex

import (
	"slices"
	"sync"
)

// Entry is one indexed file.
type Entry struct {
	SourceID string `json:"source_id"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// Record pairs an entry with its hash.
type Record struct {
	Hash string `json:"hash"`
	Entry
}

type entryKey struct {
	source string
	path   string
}

// Index maps content hashes to the files that have them.
type Index struct {
	mu     sync.RWMutex
	byHash map[string][]Entry
	byKey  map[entryKey]string
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		byHash: make(map[string][]Entry),
		byKey:  make(map[entryKey]string),
	}
}

// Add records e under hash. If the (source, path) key is already present it
// is moved to the new hash, or updated in place when the hash is unchanged.
func (i *Index) Add(hash string, e Entry) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.addLocked(hash, e)
}

func (i *Index) addLocked(hash string, e Entry) {
	k := entryKey{e.SourceID, e.Path}
	if old, ok := i.byKey[k]; ok {
		list := i.byHash[old]
		pos := slices.IndexFunc(list, func(x Entry) bool { return x.SourceID == e.SourceID && x.Path == e.Path })
		if old == hash && pos >= 0 {
			list[pos] = e
			return
		}
		if pos >= 0 {
			list = slices.Delete(list, pos, pos+1)
		}
		if len(list) == 0 {
			delete(i.byHash, old)
		} else {
			i.byHash[old] = list
		}
	}
	i.byHash[hash] = append(i.byHash[hash], e)
	i.byKey[k] = hash
}

// Lookup returns the hash recorded for a file.
func (i *Index) Lookup(sourceID, path string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	h, ok := i.byKey[entryKey{sourceID, path}]
	return h, ok
}

// Entries returns a copy of the entries sharing hash, in insertion order.
func (i *Index) Entries(hash string) []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byHash[hash])
}

// Len is the number of indexed files.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byKey)
}

// RemoveSource drops every entry belonging to sourceID.
func (i *Index) RemoveSource(sourceID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k, h := range i.byKey {
		if k.source != sourceID {
			continue
		}
		list := slices.DeleteFunc(i.byHash[h], func(x Entry) bool { return x.SourceID == sourceID && x.Path == k.path })
		if len(list) == 0 {
			delete(i.byHash, h)
		} else {
			i.byHash[h] = list
		}
		delete(i.byKey, k)
	}
}

// Merge adds every entry of other, in other's per-hash order.
func (i *Index) Merge(other *Index) {
	records := other.Records()
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, r := range records {
		i.addLocked(r.Hash, r.Entry)
	}
}

// Records lists all entries sorted by hash, keeping insertion order within
// each hash.
func (i *Index) Records() []Record {
	i.mu.RLock()
	defer i.mu.RUnlock()
	hashes := make([]string, 0, len(i.byHash))
	for h := range i.byHash {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)
	out := make([]Record, 0, len(i.byKey))
	for _, h := range hashes {
		for _, e := range i.byHash[h] {
			out = append(out, Record{Hash: h, Entry: e})
		}
	}
	return out
}

// FindAllDuplicates returns every hash with two or more entries.
func (i *Index) FindAllDuplicates() map[string][]Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	dupes := make(map[string][]Entry)
	for h, list := range i.byHash {
		if len(list) >= 2 {
			dupes[h] = slices.Clone(list)
		}
	}
	return dupes
}
