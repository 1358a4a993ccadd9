package discovery

import (
	"time"

	"takeoutscout/internal/takeout"
)

// Record is the persisted, mergeable form of a scanned source.
type Record struct {
	SourcePath      string    `json:"source_path"`
	SourceType      string    `json:"source_type"`
	ScanID          string    `json:"scan_id,omitempty"`
	FirstDiscovered time.Time `json:"first_discovered"`
	LastScanned     time.Time `json:"last_scanned"`

	takeout.Stats

	ScanCount   int                  `json:"scan_count"`
	FileDetails []takeout.FileDetail `json:"file_details"`
	MediaPairs  []takeout.MediaPair  `json:"media_pairs"`
	Notes       string               `json:"notes"`
}

// requiredFields must be present in a stored document for it to load.
// Everything else defaults when absent so the schema can grow additively.
var requiredFields = []string{
	"source_path",
	"source_type",
	"first_discovered",
	"last_scanned",
	"parts_group",
	"service_guess",
	"file_count",
	"photos",
	"videos",
	"json_sidecars",
	"other",
	"compressed_size",
}

// NewRecord builds an unsaved record from a summary and the per-file data
// gathered during the same scan.
func NewRecord(summary takeout.ArchiveSummary, details []takeout.FileDetail, pairs []takeout.MediaPair, scannedAt time.Time) *Record {
	scannedAt = scannedAt.UTC()
	if details == nil {
		details = []takeout.FileDetail{}
	}
	if pairs == nil {
		pairs = []takeout.MediaPair{}
	}
	return &Record{
		SourcePath:      summary.Path,
		SourceType:      summary.SourceType,
		ScanID:          summary.ScanID,
		FirstDiscovered: scannedAt,
		LastScanned:     scannedAt,
		Stats:           summary.Stats,
		ScanCount:       1,
		FileDetails:     details,
		MediaPairs:      pairs,
	}
}

// Summary returns the ArchiveSummary view of the record.
func (r *Record) Summary() takeout.ArchiveSummary {
	return takeout.ArchiveSummary{
		Path:       r.SourcePath,
		SourceType: r.SourceType,
		ScanID:     r.ScanID,
		Status:     takeout.StatusOK,
		Stats:      r.Stats,
	}
}

// merge carries the fields that survive a rescan from prior into r.
func (r *Record) merge(prior *Record) {
	if prior == nil {
		if r.ScanCount < 1 {
			r.ScanCount = 1
		}
		if r.FirstDiscovered.IsZero() {
			r.FirstDiscovered = r.LastScanned
		}
		return
	}
	r.FirstDiscovered = prior.FirstDiscovered
	r.Notes = prior.Notes
	r.ScanCount = prior.ScanCount + 1
}
