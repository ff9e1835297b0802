package colorspace

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned when a string is not a 6-digit HEX color.
var ErrInvalidHex = errors.New("invalid hex color format")

// RGB represents an sRGB color with 8-bit components.
//
// Each component ranges from 0 to 255.
type RGB struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// LAB represents a color in CIE-LAB space (D65 white point).
//
// L is in [0,100]. A and B are unbounded in theory but stay roughly within
// [-128,127] for colors inside the sRGB gamut.
type LAB struct {
	L float64 `json:"L"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CMYK represents a subtractive color as percentages in [0,100].
type CMYK struct {
	C int `json:"c"`
	M int `json:"m"`
	Y int `json:"y"`
	K int `json:"k"`
}

// ParseHex parses "#rrggbb" or "rrggbb" (any case) into an RGB value.
//
// Surrounding whitespace is ignored. The returned error wraps ErrInvalidHex
// when the input is not exactly six hexadecimal digits after stripping one
// optional leading '#'.
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(digits) != 6 || !isHexDigits(digits) {
		return RGB{}, fmt.Errorf("%w: %q (want #RRGGBB)", ErrInvalidHex, s)
	}
	val, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidHex, s, err)
	}
	return RGB{
		R: uint8(val >> 16),
		G: uint8(val >> 8),
		B: uint8(val),
	}, nil
}

func isHexDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Hex returns the canonical lowercase form, e.g. "#bd2c27".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBToHex is the function form of RGB.Hex.
func RGBToHex(c RGB) string {
	return c.Hex()
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Color converts to an opaque color.RGBA for use with the image packages.
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// FromColor converts any color.Color to 8-bit RGB, dropping alpha.
func FromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// NormalizeHex parses s and returns its canonical lowercase form.
func NormalizeHex(s string) (string, error) {
	c, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// EqualHex reports whether a and b denote the same color. Malformed input
// never compares equal.
func EqualHex(a, b string) bool {
	ca, err := ParseHex(a)
	if err != nil {
		return false
	}
	cb, err := ParseHex(b)
	if err != nil {
		return false
	}
	return ca == cb
}
