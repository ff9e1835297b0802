package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/clone"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// DefaultGridSpacing is the distance between grid lines when none is given.
const DefaultGridSpacing = 50

// GridOptions controls Grid.
type GridOptions struct {
	Spacing int            // pixels between lines; <= 0 means DefaultGridSpacing
	Labels  bool           // print "x,y" at every intersection
	Color   colorspace.RGB // line color
}

// Grid draws a coordinate grid over img so that sample points can be read
// off the picture. Lines are one pixel wide at every multiple of Spacing,
// measured from the top-left corner.
func Grid(img image.Image, opts GridOptions) (*Preview, error) {
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = DefaultGridSpacing
	}

	out := clone.AsRGBA(img)
	b := out.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDegenerateRegion)
	}
	w, h := b.Dx(), b.Dy()
	line := color.RGBA{R: opts.Color.R, G: opts.Color.G, B: opts.Color.B, A: 255}

	for x := spacing; x < w; x += spacing {
		for y := 0; y < h; y++ {
			out.SetRGBA(b.Min.X+x, b.Min.Y+y, line)
		}
	}
	for y := spacing; y < h; y += spacing {
		for x := 0; x < w; x++ {
			out.SetRGBA(b.Min.X+x, b.Min.Y+y, line)
		}
	}

	if opts.Labels {
		fg := color.RGBA{255, 255, 255, 255}
		bg := color.RGBA{0, 0, 0, 255}
		for y := spacing; y < h; y += spacing {
			for x := spacing; x < w; x += spacing {
				drawLabel(out, b.Min.X+x+2, b.Min.Y+y+2, fmt.Sprintf("%d,%d", x, y), fg, bg)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode grid: %w", err)
	}

	return &Preview{
		Region:      Region{X1: 0, Y1: 0, X2: w, Y2: h},
		Width:       w,
		Height:      h,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// glyphs is a 3x5 pixel font covering what coordinate labels need.
var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

const (
	glyphAdvance = 4
	labelHeight  = 7
)

// drawLabel prints text with its top-left corner at (x, y) on a solid
// background box. Pixels outside img are skipped; unknown runes leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	b := img.Bounds()
	set := func(px, py int, c color.RGBA) {
		if (image.Point{X: px, Y: py}).In(b) {
			img.SetRGBA(px, py, c)
		}
	}

	width := len([]rune(text)) * glyphAdvance
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < width; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		if g, ok := glyphs[ch]; ok {
			for row, bits := range g {
				for col, bit := range bits {
					if bit == '1' {
						set(cx+col, y+row, fg)
					}
				}
			}
		}
		cx += glyphAdvance
	}
}
