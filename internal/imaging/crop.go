package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// maxPreviewSide bounds the longer side of a preview after scaling.
const maxPreviewSide = 512

// Preview is a PNG rendering of part of an image, base64-encoded so it can
// travel inside a JSON response.
type Preview struct {
	Region      Region `json:"region"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop cuts r out of img, scales it by scale (values <= 0 mean 1) and
// encodes the result. r is in image coordinates and must lie within the
// image bounds.
func Crop(img image.Image, r Region, scale float64) (*Preview, error) {
	bounds := img.Bounds()
	rect := r.Rect()

	if r.Empty() {
		return nil, fmt.Errorf("%w: crop region (%d,%d)-(%d,%d)", ErrDegenerateRegion, r.X1, r.Y1, r.X2, r.Y2)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)

	if scale > 0 && scale != 1.0 {
		w := float64(cropped.Bounds().Dx()) * scale
		h := float64(cropped.Bounds().Dy()) * scale
		if longest := math.Max(w, h); longest > maxPreviewSide {
			w = w * maxPreviewSide / longest
			h = h * maxPreviewSide / longest
		}
		if w >= 1 && h >= 1 {
			// Nearest neighbor keeps individual pixels visible when zooming in.
			cropped = imaging.Resize(cropped, int(w), int(h), imaging.NearestNeighbor)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &Preview{
		Region:      r,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
