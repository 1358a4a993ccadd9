package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"takeoutscout/internal/fileutil"
	"takeoutscout/internal/logging"
)

var (
	// ErrPersist marks a failure to write a document or the index. It is the
	// only discovery error that callers must surface.
	ErrPersist = errors.New("discovery persist failed")
	// ErrIndexCorrupt marks an unreadable discoveries index.
	ErrIndexCorrupt = errors.New("discoveries index corrupt")
	// ErrNotFound is returned when an operation needs an existing record.
	ErrNotFound = errors.New("discovery not found")
)

const (
	indexFileName = "index.json"
	lockFileName  = ".index.lock"
)

// Store reads and writes discovery documents under one directory.
type Store struct {
	dir    string
	logger *slog.Logger
	lock   *flock.Flock
}

// Open prepares a store rooted at dir, creating the directory if needed.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("%w: discoveries directory not configured", ErrPersist)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create discoveries directory: %w", ErrPersist, err)
	}
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "discovery"),
		lock:   flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Dir returns the discoveries directory.
func (s *Store) Dir() string {
	return s.dir
}

// DocumentPath returns where the record for sourcePath is stored.
func (s *Store) DocumentPath(sourcePath string) (string, error) {
	id, err := Identity(sourcePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, documentName(id)), nil
}

// Load returns the stored record for sourcePath, or nil when none is usable.
func (s *Store) Load(sourcePath string) *Record {
	resolved, err := ResolvePath(sourcePath)
	if err != nil {
		return nil
	}
	return s.loadDocument(s.locate(resolved))
}

// Save merges rec with any prior record of the same identity and writes it.
// First discovery time and notes carry over from the prior record and the
// scan count increments; every other field comes from rec. The merged record
// is returned.
func (s *Store) Save(rec *Record) (*Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrPersist)
	}
	resolved, err := ResolvePath(rec.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrPersist, rec.SourcePath, err)
	}

	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("%w: lock index: %w", ErrPersist, err)
	}
	defer s.unlock()

	merged := *rec
	merged.SourcePath = resolved
	docPath := s.locate(resolved)
	merged.merge(s.loadDocument(docPath))

	if err := s.writeDocument(docPath, &merged); err != nil {
		return nil, err
	}

	index := s.loadIndex()
	index[resolved] = filepath.Base(docPath)
	if err := s.writeIndex(index); err != nil {
		return nil, err
	}

	s.logger.Info("discovery saved",
		logging.String(logging.FieldSourcePath, resolved),
		logging.String("document", filepath.Base(docPath)),
		logging.Int("scan_count", merged.ScanCount),
		logging.String(logging.FieldEventType, "discovery_saved"),
	)
	return &merged, nil
}

// Delete removes the record and index entry for sourcePath. It reports
// whether anything was removed; deleting an unknown source is not an error.
func (s *Store) Delete(sourcePath string) (bool, error) {
	resolved, err := ResolvePath(sourcePath)
	if err != nil {
		return false, fmt.Errorf("%w: resolve %s: %w", ErrPersist, sourcePath, err)
	}

	if err := s.lock.Lock(); err != nil {
		return false, fmt.Errorf("%w: lock index: %w", ErrPersist, err)
	}
	defer s.unlock()

	docPath := s.locate(resolved)
	removed, err := fileutil.RemoveIfExists(docPath)
	if err != nil {
		return false, fmt.Errorf("%w: remove %s: %w", ErrPersist, docPath, err)
	}

	index := s.loadIndex()
	if _, ok := index[resolved]; ok {
		delete(index, resolved)
		if err := s.writeIndex(index); err != nil {
			return removed, err
		}
		removed = true
	}

	if removed {
		s.logger.Info("discovery deleted",
			logging.String(logging.FieldSourcePath, resolved),
			logging.String(logging.FieldEventType, "discovery_deleted"),
		)
	}
	return removed, nil
}

// List returns every indexed record that still loads, ordered by source path.
func (s *Store) List() []*Record {
	index := s.loadIndex()
	records := make([]*Record, 0, len(index))
	for sourcePath, name := range index {
		rec := s.loadDocument(filepath.Join(s.dir, name))
		if rec == nil {
			s.logger.Debug("indexed discovery unavailable",
				logging.String(logging.FieldSourcePath, sourcePath),
				logging.String("document", name),
			)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SourcePath < records[j].SourcePath
	})
	return records
}

// SetNotes replaces the free-text notes on an existing record without
// counting as a scan.
func (s *Store) SetNotes(sourcePath, notes string) error {
	resolved, err := ResolvePath(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %w", ErrPersist, sourcePath, err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock index: %w", ErrPersist, err)
	}
	defer s.unlock()

	docPath := s.locate(resolved)
	rec := s.loadDocument(docPath)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, resolved)
	}
	rec.Notes = notes
	return s.writeDocument(docPath, rec)
}

func (s *Store) documentPathFor(resolved string) string {
	return filepath.Join(s.dir, documentName(identityFor(resolved)))
}

// locate prefers the document name recorded in the index so records saved
// under an earlier naming rule stay reachable.
func (s *Store) locate(resolved string) string {
	index, err := s.readIndex()
	if err == nil {
		if name, ok := index[resolved]; ok && name == filepath.Base(name) && name != "" {
			return filepath.Join(s.dir, name)
		}
	}
	return s.documentPathFor(resolved)
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Debug("index unlock failed", logging.Error(err))
	}
}

func (s *Store) loadDocument(path string) *Record {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "discovery unreadable; treating as new", "discovery_read_failed",
				logging.String("document", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check file permissions in the discoveries directory"),
				logging.String(logging.FieldImpact, "scan count and notes restart for this source"),
			)
		}
		return nil
	}

	rec, err := decodeRecord(data)
	if err != nil {
		logging.WarnWithContext(s.logger, "discovery invalid; treating as new", "discovery_invalid",
			logging.String("document", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the document or rescan the source to rewrite it"),
			logging.String(logging.FieldImpact, "scan count and notes restart for this source"),
		)
		return nil
	}
	return rec
}

func decodeRecord(data []byte) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("missing required field %q", key)
		}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &rec, nil
}

func (s *Store) writeDocument(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal document: %w", ErrPersist, err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, path, err)
	}
	return nil
}

// readIndex returns the on-disk index. A missing index is empty; an
// unreadable one yields an empty map and an error wrapping ErrIndexCorrupt.
func (s *Store) readIndex() (map[string]string, error) {
	index := map[string]string{}
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return index, nil
		}
		return index, fmt.Errorf("%w: %w", ErrIndexCorrupt, err)
	}
	if len(data) == 0 {
		return index, nil
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return map[string]string{}, fmt.Errorf("%w: %w", ErrIndexCorrupt, err)
	}
	if index == nil {
		index = map[string]string{}
	}
	return index, nil
}

func (s *Store) loadIndex() map[string]string {
	index, err := s.readIndex()
	if err != nil {
		logging.WarnWithContext(s.logger, "discoveries index unreadable; starting empty", "discovery_index_corrupt",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the index is rebuilt as sources are rescanned"),
			logging.String(logging.FieldImpact, "previously indexed sources are hidden from listings until rescanned"),
		)
	}
	return index
}

func (s *Store) writeIndex(index map[string]string) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal index: %w", ErrPersist, err)
	}
	if err := fileutil.WriteAtomic(filepath.Join(s.dir, indexFileName), data, 0o644); err != nil {
		return fmt.Errorf("%w: index: %w", ErrPersist, err)
	}
	return nil
}
