// Package imageprep normalizes poster photos before they reach the vision
// model or OCR: phone cameras produce images far larger than either backend
// needs, and oversized payloads slow the data-URL path down badly.
package imageprep

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const (
	// MaxDimension caps the longer image edge after preparation.
	MaxDimension = 2048
	jpegQuality  = 85
)

// Result is a prepared image ready for extraction.
type Result struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Prepare decodes the image, downscales it so neither edge exceeds
// MaxDimension, and re-encodes as JPEG. EXIF orientation is honored during
// decode so rotated phone photos come out upright.
func Prepare(data []byte) (*Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}

	prepared := img.Bounds()
	return &Result{
		Data:     buf.Bytes(),
		MimeType: "image/jpeg",
		Width:    prepared.Dx(),
		Height:   prepared.Dy(),
	}, nil
}

// Dimensions reports an image's size without fully preparing it.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to read image header")
	}
	return cfg.Width, cfg.Height, nil
}
