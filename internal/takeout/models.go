package takeout

import (
	"takeoutscout/internal/classify"
)

// PhotoMetadata is the subset of image tags the engine reports. Coordinates
// are never decoded; only the presence of GPS tags is recorded.
type PhotoMetadata struct {
	HasEXIF          bool   `json:"has_exif"`
	HasGPS           bool   `json:"has_gps"`
	HasDateTime      bool   `json:"has_datetime"`
	CameraMake       string `json:"camera_make,omitempty"`
	CameraModel      string `json:"camera_model,omitempty"`
	DateTimeOriginal string `json:"datetime_original,omitempty"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
}

// GeoLocation is a sidecar coordinate. Altitude is optional.
type GeoLocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// FileDetail describes one member of a source.
type FileDetail struct {
	Path      string            `json:"path"`
	Size      int64             `json:"size"`
	Category  classify.Category `json:"category"`
	Extension string            `json:"extension"`
	Hash      string            `json:"hash,omitempty"`

	SidecarPath      string `json:"sidecar_path,omitempty"`
	PhotoTakenTime   string `json:"photo_taken_time,omitempty"`
	CreationTime     string `json:"creation_time,omitempty"`
	ModificationTime string `json:"modification_time,omitempty"`
	HasSidecarGeo    bool   `json:"has_sidecar_geo,omitempty"`

	Metadata *PhotoMetadata `json:"metadata,omitempty"`
}

// NewFileDetail classifies path and returns a detail with no optional data.
func NewFileDetail(path string, size int64) FileDetail {
	return FileDetail{
		Path:      path,
		Size:      size,
		Category:  classify.Classify(path),
		Extension: classify.Extension(path),
	}
}

// SidecarTime returns the best sidecar timestamp recorded on the detail:
// photo taken, then creation, then modification.
func (d FileDetail) SidecarTime() string {
	switch {
	case d.PhotoTakenTime != "":
		return d.PhotoTakenTime
	case d.CreationTime != "":
		return d.CreationTime
	}
	return d.ModificationTime
}

// PairType names the relationship between two paired files.
type PairType string

const (
	PairLivePhoto PairType = "live_photo"
	PairPhotoJSON PairType = "photo_json"
)

// MediaPair links a primary media file to its companion: the motion clip of
// a Live Photo or the JSON sidecar of a photo.
type MediaPair struct {
	Type          PairType `json:"pair_type"`
	PrimaryPath   string   `json:"primary_path"`
	CompanionPath string   `json:"companion_path"`
	PrimarySize   int64    `json:"primary_size"`
	CompanionSize int64    `json:"companion_size"`
	BaseName      string   `json:"base_name"`
}

// TotalSize is the combined size of both files.
func (p MediaPair) TotalSize() int64 {
	return p.PrimarySize + p.CompanionSize
}

// PairCounts tallies pairs by type.
func PairCounts(pairs []MediaPair) map[PairType]int {
	counts := map[PairType]int{PairLivePhoto: 0, PairPhotoJSON: 0}
	for _, p := range pairs {
		counts[p.Type]++
	}
	return counts
}
