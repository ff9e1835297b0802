package colorspace

import "math"

// D65 reference white, scaled so that Y = 100.
const (
	whiteX = 95.047
	whiteY = 100.0
	whiteZ = 108.883
)

const (
	labEpsilon    = 0.008856 // forward nonlinearity threshold
	labInvEpsilon = 0.206897 // inverse nonlinearity threshold, cbrt(labEpsilon)
	labKappa      = 7.787
	labOffset     = 16.0 / 116.0
)

// RGBToLab converts an sRGB color to CIE-LAB.
//
// The result is not rounded; callers that display LAB values should round
// at presentation time.
func RGBToLab(c RGB) LAB {
	r := srgbToLinear(float64(c.R) / 255.0)
	g := srgbToLinear(float64(c.G) / 255.0)
	b := srgbToLinear(float64(c.B) / 255.0)

	x := (r*0.4124564 + g*0.3575761 + b*0.1804375) * 100
	y := (r*0.2126729 + g*0.7151522 + b*0.0721750) * 100
	z := (r*0.0193339 + g*0.1191920 + b*0.9503041) * 100

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	return LAB{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// LabToRGB converts a CIE-LAB color back to sRGB.
//
// Channels are rounded to the nearest integer and clamped to [0,255], so
// out-of-gamut input is accepted and mapped to the nearest representable
// value.
func LabToRGB(lab LAB) RGB {
	fy := (lab.L + 16) / 116
	fx := lab.A/500 + fy
	fz := fy - lab.B/200

	x := labFInv(fx) * whiteX / 100
	y := labFInv(fy) * whiteY / 100
	z := labFInv(fz) * whiteZ / 100

	r := x*3.2406 + y*-1.5372 + z*-0.4986
	g := x*-0.9689 + y*1.8758 + z*0.0415
	b := x*0.0557 + y*-0.2040 + z*1.0570

	return RGB{
		R: toByte(linearToSRGB(r)),
		G: toByte(linearToSRGB(g)),
		B: toByte(linearToSRGB(b)),
	}
}

// HexToLab parses a HEX string and converts it to LAB.
func HexToLab(s string) (LAB, error) {
	c, err := ParseHex(s)
	if err != nil {
		return LAB{}, err
	}
	return RGBToLab(c), nil
}

// LabToHex converts a LAB color to its canonical HEX form.
func LabToHex(lab LAB) string {
	return LabToRGB(lab).Hex()
}

// srgbToLinear removes the sRGB transfer curve from a [0,1] component.
func srgbToLinear(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

// linearToSRGB applies the sRGB transfer curve. Negative input stays on the
// linear segment so no NaN is produced.
func linearToSRGB(v float64) float64 {
	if v > 0.0031308 {
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return 12.92 * v
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return labKappa*t + labOffset
}

func labFInv(t float64) float64 {
	if t > labInvEpsilon {
		return t * t * t
	}
	return (t - labOffset) / labKappa
}

// toByte scales a [0,1] component to a rounded, clamped 8-bit value.
func toByte(v float64) uint8 {
	return uint8(clamp(math.Round(v*255), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
