package takeout

// Scan status values carried by ArchiveSummary.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusUnsupported = "unsupported"
)

// Service guesses reported for sources that could not be enumerated.
const (
	ServiceError       = "(error)"
	ServiceUnsupported = "(unsupported)"
)

// Stats holds the aggregate counters shared by summaries and discovery
// records.
type Stats struct {
	PartsGroup     string `json:"parts_group"`
	ServiceGuess   string `json:"service_guess"`
	FileCount      int    `json:"file_count"`
	Photos         int    `json:"photos"`
	Videos         int    `json:"videos"`
	JSONSidecars   int    `json:"json_sidecars"`
	Other          int    `json:"other"`
	CompressedSize int64  `json:"compressed_size"`
	TotalSize      int64  `json:"total_size"`

	PhotosChecked      int `json:"photos_checked"`
	PhotosWithEXIF     int `json:"photos_with_exif"`
	PhotosWithGPS      int `json:"photos_with_gps"`
	PhotosWithDateTime int `json:"photos_with_datetime"`

	MediaWithSidecar     int `json:"media_with_sidecar"`
	MediaWithSidecarDate int `json:"media_with_sidecar_date"`
	MediaWithSidecarGeo  int `json:"media_with_sidecar_geo"`

	LivePhotos     int `json:"live_photos"`
	PhotoJSONPairs int `json:"photo_json_pairs"`

	HashedFiles int `json:"hashed_files"`
}

// ArchiveSummary is the ephemeral result of scanning one source.
type ArchiveSummary struct {
	Path       string `json:"path"`
	SourceType string `json:"source_type"`
	ScanID     string `json:"scan_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Stats
}

// OK reports whether the source was enumerated successfully.
func (s ArchiveSummary) OK() bool {
	return s.Status == StatusOK
}
