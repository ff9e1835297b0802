package service

import (
	"errors"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/adjust"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// ColorInfo is one color in every supported representation.
type ColorInfo struct {
	Hex  string          `json:"hex"`
	RGB  colorspace.RGB  `json:"rgb"`
	LAB  colorspace.LAB  `json:"lab"`
	CMYK colorspace.CMYK `json:"cmyk"`
}

// Describe converts a HEX color to every representation.
func Describe(hex string) (ColorInfo, error) {
	c, err := colorspace.ParseHex(hex)
	if err != nil {
		return ColorInfo{}, err
	}
	return describe(c), nil
}

func describe(c colorspace.RGB) ColorInfo {
	return ColorInfo{
		Hex:  c.Hex(),
		RGB:  c,
		LAB:  colorspace.RGBToLab(c),
		CMYK: colorspace.RGBToCMYK(c),
	}
}

// AdjustStep is one adjustment as it appears on the wire.
type AdjustStep struct {
	Type   string  `json:"type"`
	Factor float64 `json:"factor,omitempty"`
}

// AdjustResult is the outcome of Adjust.
type AdjustResult struct {
	InputHex string   `json:"input_hex"`
	Steps    []string `json:"steps"`
	ColorInfo
}

// Adjust applies steps to hex in order. No steps returns the color
// unchanged.
func Adjust(hex string, steps []AdjustStep) (*AdjustResult, error) {
	input, err := colorspace.NormalizeHex(hex)
	if err != nil {
		return nil, err
	}

	pipeline := make(adjust.Pipeline, 0, len(steps))
	names := make([]string, 0, len(steps))
	for _, st := range steps {
		step, err := adjust.ParseStep(st.Type, st.Factor)
		if err != nil {
			return nil, invalid("%v", err)
		}
		pipeline = append(pipeline, step)
		names = append(names, step.String())
	}

	out, err := pipeline.Apply(input)
	if err != nil {
		if errors.Is(err, colorspace.ErrInvalidHex) {
			return nil, err
		}
		return nil, invalid("%v", err)
	}
	info, err := Describe(out)
	if err != nil {
		return nil, err
	}
	return &AdjustResult{InputHex: input, Steps: names, ColorInfo: info}, nil
}
