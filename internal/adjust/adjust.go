// Package adjust applies corrections to a color before it is matched.
//
// Both corrections work in CIE-LAB and are pure: the same input always
// yields the same output. They are not commutative, so a Pipeline applies
// its steps strictly in order.
package adjust

import (
	"fmt"
	"math"
	"strings"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// Fabric compensation constants. Photographed fabric reads lighter and
// slightly more saturated than the dyed material.
const (
	FabricLightnessFactor = 0.88
	FabricChromaFactor    = 0.98
)

// DefaultLightnessBoost is the boost applied to colors extracted from images.
const DefaultLightnessBoost = 1.05

// BoostLab multiplies L by factor and clamps it to [0,100]. a and b are
// left untouched.
func BoostLab(lab colorspace.LAB, factor float64) colorspace.LAB {
	lab.L = math.Max(0, math.Min(100, lab.L*factor))
	return lab
}

// CompensateFabricLab darkens L by 12% and reduces a and b by 2%.
func CompensateFabricLab(lab colorspace.LAB) colorspace.LAB {
	return colorspace.LAB{
		L: lab.L * FabricLightnessFactor,
		A: lab.A * FabricChromaFactor,
		B: lab.B * FabricChromaFactor,
	}
}

// LightnessBoost applies BoostLab to a HEX color and returns the result in
// canonical HEX form. A factor of 1.05 makes the color 5% lighter.
func LightnessBoost(hex string, factor float64) (string, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return "", fmt.Errorf("lightness boost factor must be a positive number, got %v", factor)
	}
	lab, err := colorspace.HexToLab(hex)
	if err != nil {
		return "", err
	}
	return colorspace.LabToHex(BoostLab(lab, factor)), nil
}

// FabricCompensation applies CompensateFabricLab to a HEX color.
func FabricCompensation(hex string) (string, error) {
	lab, err := colorspace.HexToLab(hex)
	if err != nil {
		return "", err
	}
	return colorspace.LabToHex(CompensateFabricLab(lab)), nil
}

// Step is a single adjustment in a Pipeline.
type Step struct {
	Kind   StepKind
	Factor float64 // used by StepBoost only
}

// StepKind identifies an adjustment.
type StepKind string

const (
	StepBoost  StepKind = "lightness_boost"
	StepFabric StepKind = "fabric"
)

// Boost returns a lightness boost step.
func Boost(factor float64) Step {
	return Step{Kind: StepBoost, Factor: factor}
}

// Fabric returns a fabric compensation step.
func Fabric() Step {
	return Step{Kind: StepFabric}
}

// ParseStep builds a step from its wire name. "boost" and "fabric_mode"
// are accepted as aliases.
func ParseStep(name string, factor float64) (Step, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lightness_boost", "boost":
		if factor == 0 {
			factor = DefaultLightnessBoost
		}
		return Boost(factor), nil
	case "fabric", "fabric_mode":
		return Fabric(), nil
	default:
		return Step{}, fmt.Errorf("unknown adjustment: %s", name)
	}
}

func (s Step) String() string {
	if s.Kind == StepBoost {
		return fmt.Sprintf("%s(%g)", s.Kind, s.Factor)
	}
	return string(s.Kind)
}

// Pipeline is an ordered sequence of adjustments.
type Pipeline []Step

// Apply runs every step in order, re-quantizing to HEX between steps the
// same way the individual HEX functions do.
func (p Pipeline) Apply(hex string) (string, error) {
	out, err := colorspace.NormalizeHex(hex)
	if err != nil {
		return "", err
	}
	for _, step := range p {
		switch step.Kind {
		case StepBoost:
			out, err = LightnessBoost(out, step.Factor)
		case StepFabric:
			out, err = FabricCompensation(out)
		default:
			err = fmt.Errorf("unknown adjustment: %s", step.Kind)
		}
		if err != nil {
			return "", fmt.Errorf("applying %s: %w", step, err)
		}
	}
	return out, nil
}
