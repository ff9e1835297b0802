package colorspace

import "math"

// RGBToCMYK converts an sRGB color to CMYK percentages.
//
// Pure black is special-cased to {0,0,0,100} to avoid dividing by zero.
func RGBToCMYK(c RGB) CMYK {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	k := 1 - math.Max(r, math.Max(g, b))
	if k == 1 {
		return CMYK{C: 0, M: 0, Y: 0, K: 100}
	}

	return CMYK{
		C: int(math.Round((1 - r - k) / (1 - k) * 100)),
		M: int(math.Round((1 - g - k) / (1 - k) * 100)),
		Y: int(math.Round((1 - b - k) / (1 - k) * 100)),
		K: int(math.Round(k * 100)),
	}
}
