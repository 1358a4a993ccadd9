package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"takeoutscout/internal/classify"
	"takeoutscout/internal/discovery"
	"takeoutscout/internal/hashindex"
	"takeoutscout/internal/logging"
	"takeoutscout/internal/pairing"
	"takeoutscout/internal/sidecar"
	"takeoutscout/internal/source"
	"takeoutscout/internal/takeout"
)

// Result is everything one scan produced.
type Result struct {
	Summary takeout.ArchiveSummary
	Details []takeout.FileDetail
	Pairs   []takeout.MediaPair
	// Record is the merged discovery record, nil when nothing was saved.
	Record *discovery.Record
}

// Scanner runs scans with a fixed set of options and collaborators. It is
// not safe for concurrent use.
type Scanner struct {
	opts      Options
	logger    *slog.Logger
	store     DiscoveryStore
	hashSink  HashSink
	index     *hashindex.Index
	extractor MetadataExtractor
	hasher    *hashindex.Hasher
	now       func() time.Time
	newID     func() string
}

// New validates opts and builds a Scanner.
func New(opts Options, options ...Option) (*Scanner, error) {
	s := &Scanner{
		opts:   opts,
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "scanner")

	if opts.ComputeHashes {
		hasher, err := hashindex.NewHasher(opts.HashAlgorithm, opts.HashChunkSize)
		if err != nil {
			return nil, err
		}
		s.hasher = hasher
	}
	if s.opts.MetadataReadLimit <= 0 {
		s.opts.MetadataReadLimit = 8 << 20
	}
	if s.opts.SidecarMaxBytes <= 0 {
		s.opts.SidecarMaxBytes = 1 << 20
	}
	return s, nil
}

// Scan inspects one source and returns its summary. Enumeration failures are
// reported in the summary status; only a discovery persistence failure is
// returned as an error, alongside the summary that could not be saved.
func (s *Scanner) Scan(ctx context.Context, path string) (*takeout.ArchiveSummary, error) {
	result, err := s.ScanDetailed(ctx, path)
	if result == nil {
		return nil, err
	}
	return &result.Summary, err
}

// ScanDetailed is Scan with the per-file details and pairs included.
func (s *Scanner) ScanDetailed(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := discovery.ResolvePath(path)
	if err != nil {
		resolved = path
	}
	scanID := s.newID()
	ctx = logging.WithSourcePath(logging.WithScanID(ctx, scanID), resolved)
	logger := logging.WithContext(ctx, s.logger)

	start := time.Now()
	src, err := source.Open(resolved)
	if err != nil {
		return s.degraded(logger, resolved, "", scanID, err), nil
	}
	defer src.Close()

	logger.Debug("scan started", logging.String("source_type", string(src.Kind())))

	w := newWalker(s, logger)
	if err := src.Walk(w.visit); err != nil {
		return s.degraded(logger, resolved, src.Kind(), scanID, err), nil
	}

	details := w.details
	if s.opts.ParseSidecars {
		s.applySidecars(logger, details, w.paths, w.sidecars)
	}
	pairs := pairing.Detect(pairing.FromDetails(details))

	summary := takeout.ArchiveSummary{
		Path:       resolved,
		SourceType: string(src.Kind()),
		ScanID:     scanID,
		Status:     takeout.StatusOK,
		Stats:      buildStats(resolved, src.Kind(), details, pairs, w.paths),
	}

	result := &Result{Summary: summary, Details: details, Pairs: pairs}

	if s.hasher != nil {
		s.recordHashes(ctx, logger, resolved, details)
	}

	if s.opts.SaveDiscovery && s.store != nil {
		rec := discovery.NewRecord(summary, details, pairs, s.now())
		saved, err := s.store.Save(rec)
		if err != nil {
			logging.ErrorWithContext(logger, "discovery save failed", "discovery_persist_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions of the discoveries directory"),
			)
			return result, err
		}
		result.Record = saved
	}

	logger.Info("scan complete",
		logging.String("source_type", summary.SourceType),
		logging.String("service", summary.ServiceGuess),
		logging.String("parts_group", summary.PartsGroup),
		logging.Int("file_count", summary.FileCount),
		logging.Int("photos", summary.Photos),
		logging.Int("videos", summary.Videos),
		logging.Int("pairs", len(pairs)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// degraded builds the summary reported for a source that could not be
// enumerated. Counts stay zero.
func (s *Scanner) degraded(logger *slog.Logger, path string, kind source.Kind, scanID string, cause error) *Result {
	status, service := takeout.StatusError, takeout.ServiceError
	if errors.Is(cause, source.ErrUnsupported) {
		status, service = takeout.StatusUnsupported, takeout.ServiceUnsupported
	}

	var size int64
	info, statErr := os.Stat(path)
	if statErr == nil && !info.IsDir() {
		size = info.Size()
	}
	group := classify.DerivePartsGroup(path)
	if kind == source.KindDirectory || (statErr == nil && info.IsDir()) {
		group = filepath.Base(path)
	}

	logging.WarnWithContext(logger, "source could not be scanned; reporting zero counts", "source_scan_failed",
		logging.String("status", status),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "verify the file is a complete, unencrypted zip or tar archive"),
		logging.String(logging.FieldImpact, "this source is excluded from totals; other sources continue"),
	)

	return &Result{Summary: takeout.ArchiveSummary{
		Path:       path,
		SourceType: string(kind),
		ScanID:     scanID,
		Status:     status,
		Error:      cause.Error(),
		Stats: takeout.Stats{
			PartsGroup:     group,
			ServiceGuess:   service,
			CompressedSize: size,
		},
	}}
}

// applySidecars resolves each media file's sidecar and merges its timestamps
// and geo presence into the detail.
func (s *Scanner) applySidecars(logger *slog.Logger, details []takeout.FileDetail, paths []string, buffered map[string][]byte) {
	index := sidecar.NewIndex(paths, s.opts.SidecarCaseInsensitive)
	parsed := make(map[string]*sidecar.Metadata)

	for i := range details {
		d := &details[i]
		if !d.Category.IsMedia() {
			continue
		}
		sidecarPath, ok := index.Find(d.Path)
		if !ok {
			continue
		}
		d.SidecarPath = sidecarPath

		meta, seen := parsed[sidecarPath]
		if !seen {
			data, have := buffered[sidecarPath]
			if have {
				var err error
				meta, err = sidecar.Parse(data)
				if err != nil {
					logger.Debug("sidecar ignored",
						logging.String(logging.FieldMemberPath, sidecarPath),
						logging.Error(err),
					)
				}
			}
			parsed[sidecarPath] = meta
		}
		if meta == nil {
			continue
		}
		meta.Apply(d)
	}
}

func (s *Scanner) recordHashes(ctx context.Context, logger *slog.Logger, sourceID string, details []takeout.FileDetail) {
	records := make([]hashindex.Record, 0, len(details))
	for _, d := range details {
		if d.Hash == "" {
			continue
		}
		records = append(records, hashindex.Record{
			Hash:  d.Hash,
			Entry: hashindex.Entry{SourceID: sourceID, Path: d.Path, Size: d.Size},
		})
	}

	if s.index != nil {
		s.index.RemoveSource(sourceID)
		for _, r := range records {
			s.index.Add(r.Hash, r.Entry)
		}
	}
	if s.hashSink != nil {
		if err := s.hashSink.ReplaceSource(ctx, sourceID, s.hasher.Algorithm(), records); err != nil {
			logging.WarnWithContext(logger, "hash store update failed", "hash_store_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the hash database path and disk space"),
				logging.String(logging.FieldImpact, "duplicate reports will miss this source until it is rescanned"),
			)
		}
	}
}

func buildStats(path string, kind source.Kind, details []takeout.FileDetail, pairs []takeout.MediaPair, paths []string) takeout.Stats {
	stats := takeout.Stats{
		ServiceGuess: classify.GuessService(paths),
		FileCount:    len(details),
	}

	for _, d := range details {
		stats.TotalSize += d.Size
		switch d.Category {
		case classify.CategoryPhoto:
			stats.Photos++
		case classify.CategoryVideo:
			stats.Videos++
		case classify.CategoryJSON:
			stats.JSONSidecars++
		default:
			stats.Other++
		}
		if d.Hash != "" {
			stats.HashedFiles++
		}
		if m := d.Metadata; m != nil {
			stats.PhotosChecked++
			if m.HasEXIF {
				stats.PhotosWithEXIF++
			}
			if m.HasGPS {
				stats.PhotosWithGPS++
			}
			if m.HasDateTime {
				stats.PhotosWithDateTime++
			}
		}
		if d.SidecarPath != "" {
			stats.MediaWithSidecar++
			if d.SidecarTime() != "" {
				stats.MediaWithSidecarDate++
			}
			if d.HasSidecarGeo {
				stats.MediaWithSidecarGeo++
			}
		}
	}

	counts := takeout.PairCounts(pairs)
	stats.LivePhotos = counts[takeout.PairLivePhoto]
	stats.PhotoJSONPairs = counts[takeout.PairPhotoJSON]

	if kind == source.KindDirectory {
		stats.PartsGroup = filepath.Base(path)
		stats.CompressedSize = stats.TotalSize
	} else {
		stats.PartsGroup = classify.DerivePartsGroup(path)
		if info, err := os.Stat(path); err == nil {
			stats.CompressedSize = info.Size()
		}
	}
	return stats
}

// walker accumulates per-member results during a single forward pass.
type walker struct {
	scanner  *Scanner
	logger   *slog.Logger
	buf      []byte
	details  []takeout.FileDetail
	paths    []string
	sidecars map[string][]byte
}

func newWalker(s *Scanner, logger *slog.Logger) *walker {
	chunk := hashindex.DefaultChunkSize
	if s.opts.HashChunkSize > 0 {
		chunk = s.opts.HashChunkSize
	}
	return &walker{
		scanner:  s,
		logger:   logger,
		buf:      make([]byte, chunk),
		sidecars: make(map[string][]byte),
	}
}

func (w *walker) visit(m source.Member) error {
	detail := takeout.NewFileDetail(m.Path, m.Size)
	w.paths = append(w.paths, m.Path)

	opts := w.scanner.opts
	hashing := w.scanner.hasher != nil
	var capture *prefixBuffer
	switch {
	case detail.Category == classify.CategoryPhoto && opts.ExtractMetadata && w.scanner.extractor != nil:
		capture = newPrefixBuffer(opts.MetadataReadLimit)
	case detail.Category == classify.CategoryJSON && opts.ParseSidecars && m.Size <= opts.SidecarMaxBytes:
		capture = newPrefixBuffer(opts.SidecarMaxBytes)
	}

	if hashing || capture != nil {
		hash, captured, err := w.read(m, capture)
		if err != nil {
			w.logger.Debug("member unreadable; keeping path and size",
				logging.String(logging.FieldMemberPath, m.Path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "member_read_failed"),
			)
		} else {
			detail.Hash = hash
			if capture != nil {
				switch detail.Category {
				case classify.CategoryPhoto:
					if meta, ok := w.scanner.extractor.Extract(captured); ok {
						detail.Metadata = meta
					}
				case classify.CategoryJSON:
					w.sidecars[m.Path] = captured
				}
			}
		}
	}

	w.details = append(w.details, detail)
	return nil
}

// read opens the member once, hashing the whole stream when hashing is on
// and capturing a bounded prefix when capture is non-nil.
func (w *walker) read(m source.Member, capture *prefixBuffer) (string, []byte, error) {
	rc, err := m.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	if w.scanner.hasher == nil {
		limited := io.LimitReader(rc, capture.limit)
		if _, err := io.CopyBuffer(capture, struct{ io.Reader }{limited}, w.buf); err != nil {
			return "", nil, fmt.Errorf("%w: %s: %w", source.ErrMemberRead, m.Path, err)
		}
		return "", capture.Bytes(), nil
	}

	sum := w.scanner.hasher.New()
	var dst io.Writer = sum
	if capture != nil {
		dst = io.MultiWriter(sum, capture)
	}
	if _, err := io.CopyBuffer(dst, struct{ io.Reader }{rc}, w.buf); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", source.ErrMemberRead, m.Path, err)
	}
	return hashindex.Hex(sum), capture.Bytes(), nil
}

// prefixBuffer keeps the first limit bytes written to it and discards the
// rest without error, so it can sit beside a hash in a MultiWriter.
type prefixBuffer struct {
	data  []byte
	limit int64
}

func newPrefixBuffer(limit int64) *prefixBuffer {
	return &prefixBuffer{limit: limit}
}

func (p *prefixBuffer) Write(b []byte) (int, error) {
	if room := p.limit - int64(len(p.data)); room > 0 {
		if int64(len(b)) > room {
			p.data = append(p.data, b[:room]...)
		} else {
			p.data = append(p.data, b...)
		}
	}
	return len(b), nil
}

// Bytes returns the captured prefix. A nil buffer yields nil.
func (p *prefixBuffer) Bytes() []byte {
	if p == nil {
		return nil
	}
	return p.data
}
