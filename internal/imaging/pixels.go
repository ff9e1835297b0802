package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrDegenerateRegion is returned when a sampling region has no pixels,
// either because it was empty to begin with or because clamping it to the
// image bounds left zero width or height.
var ErrDegenerateRegion = errors.New("degenerate region")

// Pixels is a raw, tightly packed pixel buffer.
//
// Data holds Width*Height pixels in row-major order. Each pixel occupies
// Channels bytes: 4 for interleaved R,G,B,A or 3 for R,G,B. Alpha, when
// present, is carried but never used for averaging.
type Pixels struct {
	Data     []byte
	Width    int
	Height   int
	Channels int
}

// NewPixels wraps an existing buffer after checking that its length
// matches the given dimensions.
func NewPixels(data []byte, width, height, channels int) (*Pixels, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("unsupported channel count %d (want 3 or 4)", channels)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("negative dimensions %dx%d", width, height)
	}
	if want := width * height * channels; len(data) != want {
		return nil, fmt.Errorf("buffer holds %d bytes, want %d for %dx%d with %d channels",
			len(data), want, width, height, channels)
	}
	return &Pixels{Data: data, Width: width, Height: height, Channels: channels}, nil
}

// FromImage converts any decoded image into a non-premultiplied RGBA
// pixel buffer, so semi-transparent pixels keep their color. The result is
// anchored at (0,0) regardless of the source bounds.
func FromImage(img image.Image) *Pixels {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()

	data := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		copy(data[y*w*4:(y+1)*w*4], src[:w*4])
	}
	return &Pixels{Data: data, Width: w, Height: h, Channels: 4}
}

// Len returns the number of pixels.
func (p *Pixels) Len() int {
	return p.Width * p.Height
}

// rgbAt returns the color components at pixel index i.
func (p *Pixels) rgbAt(i int) (r, g, b uint8) {
	off := i * p.Channels
	return p.Data[off], p.Data[off+1], p.Data[off+2]
}

// Region is a rectangle within an image.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), so Width = X2 - X1 and Height = Y2 - Y1.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RegionAt builds a Region from a top-left corner and a size.
func RegionAt(x, y, width, height int) Region {
	return Region{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// CenteredRegion returns the size×size square centered on (cx, cy). For
// even sizes the extra pixel falls on the top-left side.
func CenteredRegion(cx, cy, size int) Region {
	x := cx - size/2
	y := cy - size/2
	return RegionAt(x, y, size, size)
}

// Width returns X2 - X1.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns Y2 - Y1.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// Clamp intersects the region with a width×height image anchored at (0,0).
// The result may be empty.
func (r Region) Clamp(width, height int) Region {
	c := Region{
		X1: clampInt(r.X1, 0, width),
		Y1: clampInt(r.Y1, 0, height),
		X2: clampInt(r.X2, 0, width),
		Y2: clampInt(r.Y2, 0, height),
	}
	if c.X2 < c.X1 {
		c.X2 = c.X1
	}
	if c.Y2 < c.Y1 {
		c.Y2 = c.Y1
	}
	return c
}

// Empty reports whether the region has no pixels.
func (r Region) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Rect converts to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
