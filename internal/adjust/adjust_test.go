package adjust

import (
	"errors"
	"math"
	"testing"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

func TestBoostLab(t *testing.T) {
	tests := []struct {
		name   string
		in     colorspace.LAB
		factor float64
		wantL  float64
	}{
		{"mid gray", colorspace.LAB{L: 50, A: 10, B: -10}, 1.05, 52.5},
		{"clamped high", colorspace.LAB{L: 98, A: 1, B: 1}, 1.05, 100},
		{"darken", colorspace.LAB{L: 40, A: 0, B: 0}, 0.5, 20},
		{"identity", colorspace.LAB{L: 63.2, A: -5, B: 7}, 1, 63.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoostLab(tt.in, tt.factor)
			if math.Abs(got.L-tt.wantL) > 1e-9 {
				t.Errorf("L: got %f, want %f", got.L, tt.wantL)
			}
			if got.A != tt.in.A || got.B != tt.in.B {
				t.Errorf("a/b changed: got %+v, want a=%f b=%f", got, tt.in.A, tt.in.B)
			}
		})
	}
}

func TestCompensateFabricLab(t *testing.T) {
	got := CompensateFabricLab(colorspace.LAB{L: 50, A: 20, B: -40})
	want := colorspace.LAB{L: 44, A: 19.6, B: -39.2}
	if math.Abs(got.L-want.L) > 1e-9 || math.Abs(got.A-want.A) > 1e-9 || math.Abs(got.B-want.B) > 1e-9 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLightnessBoost(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#000000", "#000000"},
		{"#FFFFFF", "#ffffff"},
		{"#f0f0f0", "#fefefe"},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := LightnessBoost(tt.hex, 1.05)
			if err != nil {
				t.Fatalf("LightnessBoost failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("LightnessBoost(%s, 1.05) = %s, want %s", tt.hex, got, tt.want)
			}
		})
	}
}

func TestLightnessBoost_Errors(t *testing.T) {
	if _, err := LightnessBoost("#zzzzzz", 1.05); !errors.Is(err, colorspace.ErrInvalidHex) {
		t.Errorf("expected ErrInvalidHex, got %v", err)
	}
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := LightnessBoost("#808080", f); err == nil {
			t.Errorf("expected error for factor %v", f)
		}
	}
}

func TestFabricCompensation(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#ffffff", "#dddddd"},
		{"#000000", "#000000"},
		{"#F0F0F0", "#d0d0d0"},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := FabricCompensation(tt.hex)
			if err != nil {
				t.Fatalf("FabricCompensation failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("FabricCompensation(%s) = %s, want %s", tt.hex, got, tt.want)
			}
		})
	}

	if _, err := FabricCompensation("12345"); !errors.Is(err, colorspace.ErrInvalidHex) {
		t.Errorf("expected ErrInvalidHex, got %v", err)
	}
}

func TestFabricCompensation_Deterministic(t *testing.T) {
	for _, hex := range []string{"#AABBCC", "#bd2c27", "#123456", "#808080", "#ffcc00"} {
		first, err := FabricCompensation(hex)
		if err != nil {
			t.Fatalf("FabricCompensation(%s) failed: %v", hex, err)
		}
		for i := 0; i < 5; i++ {
			again, _ := FabricCompensation(hex)
			if again != first {
				t.Errorf("FabricCompensation(%s) not deterministic: %s vs %s", hex, first, again)
			}
		}
	}
}

func TestPipeline_OrderMatters(t *testing.T) {
	boostThenFabric, err := Pipeline{Boost(1.1), Fabric()}.Apply("#ffffff")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	fabricThenBoost, err := Pipeline{Fabric(), Boost(1.1)}.Apply("#ffffff")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if boostThenFabric != "#dddddd" {
		t.Errorf("boost then fabric: got %s, want #dddddd", boostThenFabric)
	}
	if fabricThenBoost != "#f6f6f6" {
		t.Errorf("fabric then boost: got %s, want #f6f6f6", fabricThenBoost)
	}
	if boostThenFabric == fabricThenBoost {
		t.Error("boost and fabric should not commute")
	}
}

func TestPipeline_MatchesIndividualSteps(t *testing.T) {
	hex := "#bd2c27"
	boosted, _ := LightnessBoost(hex, 1.05)
	want, _ := FabricCompensation(boosted)

	got, err := Pipeline{Boost(1.05), Fabric()}.Apply(hex)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestPipeline_Empty(t *testing.T) {
	got, err := Pipeline(nil).Apply("#ABCDEF")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != "#abcdef" {
		t.Errorf("got %s, want #abcdef", got)
	}
}

func TestPipeline_Errors(t *testing.T) {
	if _, err := (Pipeline{Fabric()}).Apply("not-a-color"); !errors.Is(err, colorspace.ErrInvalidHex) {
		t.Errorf("expected ErrInvalidHex, got %v", err)
	}
	if _, err := (Pipeline{Boost(-2)}).Apply("#808080"); err == nil {
		t.Error("expected error for negative boost")
	}
	if _, err := (Pipeline{{Kind: "sharpen"}}).Apply("#808080"); err == nil {
		t.Error("expected error for unknown step")
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		name    string
		factor  float64
		want    Step
		wantErr bool
	}{
		{"lightness_boost", 1.2, Boost(1.2), false},
		{"boost", 0, Boost(DefaultLightnessBoost), false},
		{"Fabric", 0, Fabric(), false},
		{"fabric_mode", 3, Fabric(), false},
		{"blur", 0, Step{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStep(tt.name, tt.factor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStepString(t *testing.T) {
	if s := Boost(1.05).String(); s != "lightness_boost(1.05)" {
		t.Errorf("got %q", s)
	}
	if s := Fabric().String(); s != "fabric" {
		t.Errorf("got %q", s)
	}
}
