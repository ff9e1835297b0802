// Package colorspace converts colors between the representations used by the
// matcher: HEX strings, 8-bit sRGB triples, CIE-LAB and CMYK.
//
// All functions are pure and safe for concurrent use.
//
// # HEX Format
//
// Input is accepted as "#RRGGBB" or "RRGGBB" in any letter case. Output is
// always the canonical lowercase form "#rrggbb". Use EqualHex to compare two
// HEX strings; it ignores case and the optional leading '#'.
//
// # LAB Conversion
//
// RGBToLab follows the sRGB -> linear -> CIE-XYZ (D65) -> CIE-LAB pipeline:
//
//  1. Normalize each channel to [0,1]
//  2. Inverse sRGB gamma (threshold 0.04045)
//  3. Linear RGB to XYZ with the sRGB matrix, scaled x100
//  4. Divide by the D65 white point (95.047, 100.0, 108.883)
//  5. LAB nonlinearity (cube root above 0.008856, 7.787*v + 16/116 below)
//  6. L = 116*fy - 16, a = 500*(fx - fy), b = 200*(fy - fz)
//
// LabToRGB applies the inverse. Out-of-gamut LAB values are clamped to
// [0,255] per channel without error.
package colorspace
