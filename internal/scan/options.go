package scan

import (
	"context"
	"log/slog"
	"time"

	"takeoutscout/internal/config"
	"takeoutscout/internal/discovery"
	"takeoutscout/internal/hashindex"
	"takeoutscout/internal/takeout"
)

// Options selects which optional passes run during a scan.
type Options struct {
	ComputeHashes          bool
	ParseSidecars          bool
	ExtractMetadata        bool
	SaveDiscovery          bool
	HashAlgorithm          string
	HashChunkSize          int
	MetadataReadLimit      int64
	SidecarMaxBytes        int64
	SidecarCaseInsensitive bool
}

// OptionsFromConfig maps the [scan] config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Options{
		ComputeHashes:          cfg.Scan.ComputeHashes,
		ParseSidecars:          cfg.Scan.ParseSidecars,
		ExtractMetadata:        cfg.Scan.ExtractMetadata,
		SaveDiscovery:          cfg.Scan.SaveDiscovery,
		HashAlgorithm:          cfg.Scan.HashAlgorithm,
		HashChunkSize:          cfg.Scan.HashChunkSize,
		MetadataReadLimit:      cfg.Scan.MetadataReadLimit,
		SidecarMaxBytes:        cfg.Scan.SidecarMaxBytes,
		SidecarCaseInsensitive: cfg.Scan.SidecarCaseInsensitive,
	}
}

// DiscoveryStore persists merged discovery records.
type DiscoveryStore interface {
	Save(rec *discovery.Record) (*discovery.Record, error)
}

// HashSink receives the content hashes of one source after it is scanned.
type HashSink interface {
	ReplaceSource(ctx context.Context, sourceID string, algorithm hashindex.Algorithm, records []hashindex.Record) error
}

// MetadataExtractor reports image tags from the leading bytes of a photo.
type MetadataExtractor interface {
	Extract(data []byte) (*takeout.PhotoMetadata, bool)
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDiscoveryStore enables persistence when Options.SaveDiscovery is set.
func WithDiscoveryStore(store DiscoveryStore) Option {
	return func(s *Scanner) { s.store = store }
}

// WithHashSink forwards each source's hashes to sink.
func WithHashSink(sink HashSink) Option {
	return func(s *Scanner) { s.hashSink = sink }
}

// WithHashIndex accumulates hashes of every scanned source in index.
func WithHashIndex(index *hashindex.Index) Option {
	return func(s *Scanner) { s.index = index }
}

// WithExtractor installs the metadata extractor. Without one, metadata
// extraction is skipped regardless of Options.ExtractMetadata.
func WithExtractor(extractor MetadataExtractor) Option {
	return func(s *Scanner) { s.extractor = extractor }
}

// WithClock overrides the time source used for discovery timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}
