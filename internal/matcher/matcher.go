// Package matcher ranks palette entries by perceptual distance to an input
// color.
package matcher

import (
	"sort"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/metric"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/palette"
)

// Options controls how candidates are compared.
type Options struct {
	// UseExtracted compares against an entry's ExtractedHex when it holds
	// a valid color, instead of its ReferenceHex.
	UseExtracted bool

	// Metric selects the ΔE formula. The zero value is Euclidean.
	Metric metric.Metric
}

// Result is one ranked candidate.
type Result struct {
	Entry      palette.Entry   `json:"entry"`
	UsedHex    string          `json:"hex"`
	RGB        colorspace.RGB  `json:"rgb"`
	LAB        colorspace.LAB  `json:"lab"`
	CMYK       colorspace.CMYK `json:"cmyk"`
	DeltaE     float64         `json:"delta_e"`
	Similarity float64         `json:"similarity"`
	Band       metric.Band     `json:"band"`
}

// FindSimilar ranks entries by distance to input, closest first.
//
// Entries with no usable hex are skipped. Ties keep palette order. A
// positive limit truncates the result; limit <= 0 returns every match.
func FindSimilar(input colorspace.RGB, entries []palette.Entry, opts Options, limit int) []Result {
	return FindSimilarLab(colorspace.RGBToLab(input), entries, opts, limit)
}

// FindSimilarLab is FindSimilar for an input already in LAB, such as a
// color that was adjusted in LAB space.
func FindSimilarLab(input colorspace.LAB, entries []palette.Entry, opts Options, limit int) []Result {
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		hex, rgb, ok := candidate(e, opts.UseExtracted)
		if !ok {
			continue
		}
		lab := colorspace.RGBToLab(rgb)
		d := opts.Metric.Distance(input, lab)
		results = append(results, Result{
			Entry:      e,
			UsedHex:    hex,
			RGB:        rgb,
			LAB:        lab,
			CMYK:       colorspace.RGBToCMYK(rgb),
			DeltaE:     d,
			Similarity: metric.Similarity(d),
			Band:       metric.Interpret(d),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DeltaE < results[j].DeltaE
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// FindSimilarHex parses hex and ranks entries against it. A malformed hex
// returns an error wrapping colorspace.ErrInvalidHex.
func FindSimilarHex(hex string, entries []palette.Entry, opts Options, limit int) ([]Result, error) {
	rgb, err := colorspace.ParseHex(hex)
	if err != nil {
		return nil, err
	}
	return FindSimilar(rgb, entries, opts, limit), nil
}

// candidate picks the hex an entry is compared by.
func candidate(e palette.Entry, useExtracted bool) (string, colorspace.RGB, bool) {
	if useExtracted && e.ExtractedHex != "" {
		if rgb, err := colorspace.ParseHex(e.ExtractedHex); err == nil {
			return rgb.Hex(), rgb, true
		}
	}
	rgb, err := colorspace.ParseHex(e.ReferenceHex)
	if err != nil {
		return "", colorspace.RGB{}, false
	}
	return rgb.Hex(), rgb, true
}
