package sidecar

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"takeoutscout/internal/takeout"
)

// ErrParse marks a sidecar that is not valid UTF-8 JSON of the expected shape.
var ErrParse = errors.New("sidecar parse error")

// Metadata is the parsed content of one sidecar.
type Metadata struct {
	Title            string               `json:"title,omitempty"`
	Description      string               `json:"description,omitempty"`
	PhotoTakenTime   *time.Time           `json:"photo_taken_time,omitempty"`
	CreationTime     *time.Time           `json:"creation_time,omitempty"`
	ModificationTime *time.Time           `json:"modification_time,omitempty"`
	GeoLocation      *takeout.GeoLocation `json:"geo_location,omitempty"`
	GeoLocationEXIF  *takeout.GeoLocation `json:"geo_location_exif,omitempty"`
	People           []string             `json:"people,omitempty"`
	URL              string               `json:"url,omitempty"`
}

// Apply copies the parsed times and geo presence onto d. The detail's
// SidecarTime decides which of the copied times wins.
func (m *Metadata) Apply(d *takeout.FileDetail) {
	if m.PhotoTakenTime != nil {
		d.PhotoTakenTime = FormatTime(*m.PhotoTakenTime)
	}
	if m.CreationTime != nil {
		d.CreationTime = FormatTime(*m.CreationTime)
	}
	if m.ModificationTime != nil {
		d.ModificationTime = FormatTime(*m.ModificationTime)
	}
	d.HasSidecarGeo = m.HasGeo()
}

// HasGeo reports whether either geo field survived the zero-sentinel check.
func (m *Metadata) HasGeo() bool {
	return m.GeoLocation != nil || m.GeoLocationEXIF != nil
}

type rawTime struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Formatted string          `json:"formatted"`
}

type rawGeo struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

type rawPerson struct {
	Name string `json:"name"`
}

type rawSidecar struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	PhotoTakenTime   *rawTime    `json:"photoTakenTime"`
	CreationTime     *rawTime    `json:"creationTime"`
	ModificationTime *rawTime    `json:"modificationTime"`
	GeoData          *rawGeo     `json:"geoData"`
	GeoDataEXIF      *rawGeo     `json:"geoDataExif"`
	People           []rawPerson `json:"people"`
	URL              string      `json:"url"`
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Parse decodes sidecar bytes.
func Parse(data []byte) (*Metadata, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrParse)
	}
	var raw rawSidecar
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	meta := &Metadata{
		Title:            raw.Title,
		Description:      raw.Description,
		PhotoTakenTime:   parseTimestamp(raw.PhotoTakenTime),
		CreationTime:     parseTimestamp(raw.CreationTime),
		ModificationTime: parseTimestamp(raw.ModificationTime),
		GeoLocation:      parseGeo(raw.GeoData),
		GeoLocationEXIF:  parseGeo(raw.GeoDataEXIF),
		URL:              raw.URL,
	}
	for _, p := range raw.People {
		if p.Name != "" {
			meta.People = append(meta.People, p.Name)
		}
	}
	return meta, nil
}

// parseTimestamp accepts the timestamp as a quoted or bare integer. Anything
// else is treated as absent.
func parseTimestamp(rt *rawTime) *time.Time {
	if rt == nil || len(rt.Timestamp) == 0 {
		return nil
	}
	text := strings.TrimSpace(string(rt.Timestamp))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	if text == "" || text == "null" {
		return nil
	}
	secs, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}

func parseGeo(g *rawGeo) *takeout.GeoLocation {
	if g == nil {
		return nil
	}
	if g.Latitude == 0 && g.Longitude == 0 {
		return nil
	}
	return &takeout.GeoLocation{
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
		Altitude:  g.Altitude,
	}
}

// FormatTime renders t the way file details store sidecar timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseStoredTime parses a timestamp written by FormatTime.
func ParseStoredTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
