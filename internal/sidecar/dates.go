package sidecar

import (
	"strings"
	"time"

	"takeoutscout/internal/takeout"
)

// DefaultMatchThreshold is the widest EXIF/sidecar gap still reported as a match.
const DefaultMatchThreshold = 5 * time.Second

// Status classifies one DateComparison.
type Status string

const (
	StatusMatch       Status = "match"
	StatusMismatch    Status = "mismatch"
	StatusEXIFOnly    Status = "exif_only"
	StatusSidecarOnly Status = "sidecar_only"
	StatusNoDates     Status = "no_dates"
)

// DateComparison reconciles the EXIF and sidecar dates of one media file.
// DiffSeconds is exif minus sidecar and is only set when both are present.
type DateComparison struct {
	Path        string     `json:"path"`
	SourceID    string     `json:"source_id"`
	EXIFDate    *time.Time `json:"exif_date,omitempty"`
	SidecarDate *time.Time `json:"sidecar_date,omitempty"`
	DiffSeconds *int64     `json:"diff_seconds,omitempty"`
	Status      Status     `json:"status"`
}

// Compare builds the comparison for a single file.
func Compare(filePath, sourceID string, exif, sidecar *time.Time, threshold time.Duration) DateComparison {
	c := DateComparison{Path: filePath, SourceID: sourceID, EXIFDate: exif, SidecarDate: sidecar}
	switch {
	case exif != nil && sidecar != nil:
		diff := int64(exif.Sub(*sidecar) / time.Second)
		c.DiffSeconds = &diff
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		if time.Duration(abs)*time.Second <= threshold {
			c.Status = StatusMatch
		} else {
			c.Status = StatusMismatch
		}
	case exif != nil:
		c.Status = StatusEXIFOnly
	case sidecar != nil:
		c.Status = StatusSidecarOnly
	default:
		c.Status = StatusNoDates
	}
	return c
}

// CompareDates compares every photo and video in details.
func CompareDates(sourceID string, details []takeout.FileDetail, threshold time.Duration) []DateComparison {
	var out []DateComparison
	for _, d := range details {
		if !d.Category.IsMedia() {
			continue
		}
		var exif, side *time.Time
		if d.Metadata != nil {
			if t, ok := ParseEXIFDateTime(d.Metadata.DateTimeOriginal); ok {
				exif = &t
			}
		}
		if t, ok := ParseStoredTime(d.SidecarTime()); ok {
			side = &t
		}
		out = append(out, Compare(d.Path, sourceID, exif, side, threshold))
	}
	return out
}

// StatusCounts tallies comparisons by status.
func StatusCounts(comparisons []DateComparison) map[Status]int {
	counts := map[Status]int{}
	for _, c := range comparisons {
		counts[c.Status]++
	}
	return counts
}

var exifLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006:01:02 15:04",
	time.RFC3339,
}

// ParseEXIFDateTime reads an EXIF DateTimeOriginal value. EXIF carries no
// zone, so the wall clock is taken as UTC.
func ParseEXIFDateTime(s string) (time.Time, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "\x00")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range exifLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DateAnalysis summarizes how many media files carry recoverable dates.
type DateAnalysis struct {
	TotalMedia         int        `json:"total_media"`
	WithSidecar        int        `json:"with_sidecar"`
	WithPhotoTakenTime int        `json:"with_photo_taken_time"`
	WithCreationTime   int        `json:"with_creation_time"`
	WithGeo            int        `json:"with_geo"`
	Earliest           *time.Time `json:"earliest,omitempty"`
	Latest             *time.Time `json:"latest,omitempty"`
	MissingDates       []string   `json:"missing_dates,omitempty"`
}

// SidecarCoverage is the percentage of media files with a sidecar.
func (a DateAnalysis) SidecarCoverage() float64 {
	if a.TotalMedia == 0 {
		return 0
	}
	return float64(a.WithSidecar) / float64(a.TotalMedia) * 100
}

// DateRecoveryRate is the percentage of media files with a sidecar date.
func (a DateAnalysis) DateRecoveryRate() float64 {
	if a.TotalMedia == 0 {
		return 0
	}
	return float64(max(a.WithPhotoTakenTime, a.WithCreationTime)) / float64(a.TotalMedia) * 100
}

// AnalyzeDates computes DateAnalysis from scanned file details.
func AnalyzeDates(details []takeout.FileDetail) DateAnalysis {
	var a DateAnalysis
	for _, d := range details {
		if !d.Category.IsMedia() {
			continue
		}
		a.TotalMedia++
		if d.SidecarPath != "" {
			a.WithSidecar++
		}
		if d.PhotoTakenTime != "" {
			a.WithPhotoTakenTime++
		}
		if d.CreationTime != "" {
			a.WithCreationTime++
		}
		if d.HasSidecarGeo {
			a.WithGeo++
		}
		t, ok := ParseStoredTime(d.SidecarTime())
		if !ok {
			a.MissingDates = append(a.MissingDates, d.Path)
			continue
		}
		if a.Earliest == nil || t.Before(*a.Earliest) {
			e := t
			a.Earliest = &e
		}
		if a.Latest == nil || t.After(*a.Latest) {
			l := t
			a.Latest = &l
		}
	}
	return a
}
