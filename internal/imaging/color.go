package imaging

import (
	"fmt"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// Default thresholds for DominantColor. A pixel whose channels are all
// above DefaultWhiteThreshold, or all below DefaultBlackThreshold, is
// treated as background.
const (
	DefaultWhiteThreshold uint8 = 240
	DefaultBlackThreshold uint8 = 10
)

// AverageRegion returns the mean color of the width×height rectangle whose
// top-left corner is (x, y).
//
// The rectangle is clamped to the image bounds first. If nothing is left
// after clamping the error wraps ErrDegenerateRegion. Each channel is
// averaged independently and rounded to the nearest integer.
func AverageRegion(p *Pixels, x, y, width, height int) (colorspace.RGB, error) {
	c, _, err := AverageIn(p, RegionAt(x, y, width, height))
	return c, err
}

// AverageIn is AverageRegion for a Region. It also returns the clamped
// region that was actually sampled.
func AverageIn(p *Pixels, region Region) (colorspace.RGB, Region, error) {
	clamped := region.Clamp(p.Width, p.Height)
	if clamped.Empty() {
		return colorspace.RGB{}, clamped, fmt.Errorf("%w: (%d,%d)-(%d,%d) in %dx%d image",
			ErrDegenerateRegion, region.X1, region.Y1, region.X2, region.Y2, p.Width, p.Height)
	}

	var sr, sg, sb, n uint64
	for y := clamped.Y1; y < clamped.Y2; y++ {
		row := y * p.Width
		for x := clamped.X1; x < clamped.X2; x++ {
			r, g, b := p.rgbAt(row + x)
			sr += uint64(r)
			sg += uint64(g)
			sb += uint64(b)
			n++
		}
	}
	return colorspace.RGB{R: roundDiv(sr, n), G: roundDiv(sg, n), B: roundDiv(sb, n)}, clamped, nil
}

// SampleAround averages the size×size square centered on (cx, cy), the
// way a click on a displayed image is sampled.
func SampleAround(p *Pixels, cx, cy, size int) (colorspace.RGB, Region, error) {
	if size <= 0 {
		return colorspace.RGB{}, Region{}, fmt.Errorf("%w: sample size %d", ErrDegenerateRegion, size)
	}
	return AverageIn(p, CenteredRegion(cx, cy, size))
}

// DominantColor estimates the main color of an image as the average of
// its non-background pixels.
//
// Pixels with every channel above white, or every channel below black,
// are skipped. When that skips everything (an all-white or all-black
// image) the plain average of all pixels is returned instead. An empty
// buffer returns ErrDegenerateRegion.
func DominantColor(p *Pixels, white, black uint8) (colorspace.RGB, error) {
	total := p.Len()
	if total == 0 {
		return colorspace.RGB{}, fmt.Errorf("%w: empty image", ErrDegenerateRegion)
	}

	var fr, fg, fb, fn uint64 // filtered
	var ar, ag, ab uint64     // all
	for i := 0; i < total; i++ {
		r, g, b := p.rgbAt(i)
		ar += uint64(r)
		ag += uint64(g)
		ab += uint64(b)

		if r > white && g > white && b > white {
			continue
		}
		if r < black && g < black && b < black {
			continue
		}
		fr += uint64(r)
		fg += uint64(g)
		fb += uint64(b)
		fn++
	}

	if fn == 0 {
		n := uint64(total)
		return colorspace.RGB{R: roundDiv(ar, n), G: roundDiv(ag, n), B: roundDiv(ab, n)}, nil
	}
	return colorspace.RGB{R: roundDiv(fr, fn), G: roundDiv(fg, fn), B: roundDiv(fb, fn)}, nil
}

// roundDiv divides and rounds half up. The result of averaging 8-bit
// values always fits in a uint8.
func roundDiv(sum, n uint64) uint8 {
	return uint8((sum + n/2) / n)
}
