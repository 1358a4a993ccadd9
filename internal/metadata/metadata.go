// Package metadata reads capture metadata from in-memory image bytes.
//
// Only tag presence and a few descriptive fields are extracted: camera make
// and model, the original capture time, whether GPS tags exist, and pixel
// dimensions. Pixel data is never decoded. Bytes that are not an image, or
// that are truncated or corrupt, produce no metadata; that is a normal
// outcome and never aborts a scan.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"takeoutscout/internal/takeout"
)

// ErrDecode marks bytes that yielded neither EXIF tags nor image dimensions.
var ErrDecode = errors.New("metadata decode error")

// Extractor pulls PhotoMetadata out of image bytes.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns metadata for data, or false when none could be read.
func (e *Extractor) Extract(data []byte) (*takeout.PhotoMetadata, bool) {
	meta, err := Decode(data)
	if err != nil {
		return nil, false
	}
	return meta, true
}

// Decode inspects data and reports why nothing could be read.
func Decode(data []byte) (meta *takeout.PhotoMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			meta = nil
			err = fmt.Errorf("%w: decoder panic: %v", ErrDecode, r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: not an image (%s)", ErrDecode, mtype.String())
	}

	meta = &takeout.PhotoMetadata{}
	gotDims := false
	if cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(data)); cfgErr == nil {
		meta.Width, meta.Height = cfg.Width, cfg.Height
		gotDims = true
	}

	x, exifErr := exif.Decode(bytes.NewReader(data))
	if exifErr != nil {
		if !gotDims {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, mtype.String(), exifErr)
		}
		return meta, nil
	}

	meta.HasEXIF = true
	meta.CameraMake = tagString(x, exif.Make)
	meta.CameraModel = tagString(x, exif.Model)
	meta.DateTimeOriginal = tagString(x, exif.DateTimeOriginal)
	if meta.DateTimeOriginal == "" {
		meta.DateTimeOriginal = tagString(x, exif.DateTime)
	}
	meta.HasDateTime = meta.DateTimeOriginal != ""
	if _, gpsErr := x.Get(exif.GPSLatitude); gpsErr == nil {
		meta.HasGPS = true
	}
	if !gotDims {
		meta.Width = tagInt(x, exif.PixelXDimension)
		meta.Height = tagInt(x, exif.PixelYDimension)
	}
	return meta, nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.StringVal {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func tagInt(x *exif.Exif, name exif.FieldName) int {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.IntVal {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}
