package matcher

import (
	"errors"
	"math"
	"testing"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/metric"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/palette"
)

func abcPalette() []palette.Entry {
	return []palette.Entry{
		{Code: "A", Name: "Red", ReferenceHex: "#FF0000"},
		{Code: "B", Name: "Almost Red", ReferenceHex: "#FE0101"},
		{Code: "C", Name: "Blue", ReferenceHex: "#0000FF"},
	}
}

func codes(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Entry.Code
	}
	return out
}

func equalCodes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFindSimilar_Ordering(t *testing.T) {
	results, err := FindSimilarHex("#FF0000", abcPalette(), Options{}, 2)
	if err != nil {
		t.Fatalf("FindSimilarHex failed: %v", err)
	}

	if got := codes(results); !equalCodes(got, []string{"A", "B"}) {
		t.Fatalf("got %v, want [A B]", got)
	}

	exact := results[0]
	if exact.DeltaE != 0 || exact.Similarity != 100 || exact.Band != metric.BandImperceptible {
		t.Errorf("exact match: got ΔE=%f similarity=%f band=%v", exact.DeltaE, exact.Similarity, exact.Band)
	}
	if exact.UsedHex != "#ff0000" {
		t.Errorf("UsedHex: got %q, want #ff0000", exact.UsedHex)
	}
	if exact.CMYK != (colorspace.CMYK{C: 0, M: 100, Y: 100, K: 0}) {
		t.Errorf("CMYK: got %+v", exact.CMYK)
	}
	if results[1].DeltaE <= 0 || results[1].DeltaE > 3 {
		t.Errorf("near match ΔE: got %f, want (0, 3]", results[1].DeltaE)
	}
}

func TestFindSimilar_LimitSaturation(t *testing.T) {
	results := FindSimilar(colorspace.RGB{R: 10, G: 20, B: 30}, abcPalette(), Options{}, 10)
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestFindSimilar_Limits(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{-1, 3},
		{0, 3},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
	}

	for _, tt := range tests {
		results := FindSimilar(colorspace.RGB{R: 255}, abcPalette(), Options{}, tt.limit)
		if len(results) != tt.want {
			t.Errorf("limit %d: got %d results, want %d", tt.limit, len(results), tt.want)
		}
	}
}

func TestFindSimilar_SortedAscending(t *testing.T) {
	entries := []palette.Entry{
		{Code: "1", ReferenceHex: "#000000"},
		{Code: "2", ReferenceHex: "#ffffff"},
		{Code: "3", ReferenceHex: "#808080"},
		{Code: "4", ReferenceHex: "#ff8800"},
		{Code: "5", ReferenceHex: "#0088ff"},
	}
	results := FindSimilar(colorspace.RGB{R: 120, G: 110, B: 100}, entries, Options{}, 0)
	for i := 1; i < len(results); i++ {
		if results[i].DeltaE < results[i-1].DeltaE {
			t.Errorf("results not sorted at %d: %f < %f", i, results[i].DeltaE, results[i-1].DeltaE)
		}
	}
}

func TestFindSimilar_StableTies(t *testing.T) {
	entries := []palette.Entry{
		{Code: "first", ReferenceHex: "#336699"},
		{Code: "far", ReferenceHex: "#ffff00"},
		{Code: "second", ReferenceHex: "#336699"},
		{Code: "third", ReferenceHex: "#336699"},
	}
	results := FindSimilar(colorspace.RGB{R: 0x33, G: 0x66, B: 0x99}, entries, Options{}, 0)
	if got := codes(results); !equalCodes(got, []string{"first", "second", "third", "far"}) {
		t.Errorf("got %v, want [first second third far]", got)
	}
}

func TestFindSimilar_UseExtracted(t *testing.T) {
	entries := []palette.Entry{
		{Code: "X", ReferenceHex: "#0000ff", ExtractedHex: "#ff0000"},
		{Code: "Y", ReferenceHex: "#fe0101"},
		{Code: "Z", ReferenceHex: "#00ff00", ExtractedHex: "garbage"},
	}
	red := colorspace.RGB{R: 255}

	withExtracted := FindSimilar(red, entries, Options{UseExtracted: true}, 0)
	if got := codes(withExtracted); got[0] != "X" {
		t.Errorf("with extracted: got %v, want X first", got)
	}
	if withExtracted[0].UsedHex != "#ff0000" {
		t.Errorf("UsedHex: got %q, want #ff0000", withExtracted[0].UsedHex)
	}
	for _, r := range withExtracted {
		if r.Entry.Code == "Z" && r.UsedHex != "#00ff00" {
			t.Errorf("invalid extracted hex should fall back to reference, got %q", r.UsedHex)
		}
	}

	withReference := FindSimilar(red, entries, Options{}, 0)
	if got := codes(withReference); got[0] != "Y" {
		t.Errorf("with reference: got %v, want Y first", got)
	}
}

func TestFindSimilar_SkipsUnusable(t *testing.T) {
	entries := []palette.Entry{
		{Code: "empty"},
		{Code: "bad", ReferenceHex: "#12345"},
		{Code: "ok", ReferenceHex: "#123456"},
	}
	results := FindSimilar(colorspace.RGB{}, entries, Options{}, 0)
	if got := codes(results); !equalCodes(got, []string{"ok"}) {
		t.Errorf("got %v, want [ok]", got)
	}
}

func TestFindSimilar_EmptyPalette(t *testing.T) {
	results, err := FindSimilarHex("#abcdef", nil, Options{}, 5)
	if err != nil {
		t.Fatalf("empty palette should not be an error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

func TestFindSimilarHex_Invalid(t *testing.T) {
	for _, hex := range []string{"", "#ff00", "#gg0000", "red"} {
		results, err := FindSimilarHex(hex, abcPalette(), Options{}, 5)
		if !errors.Is(err, colorspace.ErrInvalidHex) {
			t.Errorf("FindSimilarHex(%q): expected ErrInvalidHex, got %v", hex, err)
		}
		if results != nil {
			t.Errorf("FindSimilarHex(%q): expected nil results, got %v", hex, results)
		}
	}
}

func TestFindSimilar_CIEDE2000(t *testing.T) {
	results := FindSimilar(colorspace.RGB{R: 255}, abcPalette(), Options{Metric: metric.CIEDE2000}, 0)
	if got := codes(results); !equalCodes(got, []string{"A", "B", "C"}) {
		t.Errorf("got %v, want [A B C]", got)
	}
	if results[0].DeltaE > 1e-6 {
		t.Errorf("exact match ΔE: got %g", results[0].DeltaE)
	}
	wantSim := metric.Similarity(results[2].DeltaE)
	if math.Abs(results[2].Similarity-wantSim) > 1e-12 {
		t.Errorf("similarity should use the same formula: got %f, want %f", results[2].Similarity, wantSim)
	}
}

func TestFindSimilarLab_Boosted(t *testing.T) {
	entries := []palette.Entry{
		{Code: "dark", ReferenceHex: "#404040"},
		{Code: "light", ReferenceHex: "#c0c0c0"},
	}
	lab := colorspace.LAB{L: 75, A: 0, B: 0}
	results := FindSimilarLab(lab, entries, Options{}, 1)
	if len(results) != 1 || results[0].Entry.Code != "light" {
		t.Errorf("got %v, want [light]", codes(results))
	}
}
