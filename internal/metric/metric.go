// Package metric computes perceptual distance between LAB colors and turns
// it into a bounded similarity score.
//
// The default metric is the plain Euclidean distance in LAB space (CIE76).
// It is a deliberate simplification: ranking against a palette only needs a
// monotonic notion of "closer", and the similarity score and interpretation
// bands below are calibrated against it. CIEDE2000 is available as an
// alternative for callers that want the perceptually corrected distance.
package metric

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// similarityPerDeltaE is how many similarity points one unit of ΔE costs.
// The score reaches zero at ΔE = 100/similarityPerDeltaE = 20.
const similarityPerDeltaE = 5.0

// DeltaE returns the Euclidean distance between two LAB colors:
// sqrt(ΔL² + Δa² + Δb²).
func DeltaE(a, b colorspace.LAB) float64 {
	dL := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dL*dL + da*da + db*db)
}

// Similarity maps a ΔE to a score in [0,100] using max(0, 100 - 5·ΔE).
// ΔE = 0 yields exactly 100; ΔE >= 20 yields 0.
func Similarity(deltaE float64) float64 {
	return math.Max(0, 100-deltaE*similarityPerDeltaE)
}

// Metric selects the distance formula used for ranking.
type Metric string

const (
	// Euclidean is the CIE76 distance computed by DeltaE.
	Euclidean Metric = "euclidean"

	// CIEDE2000 is the CIE 2000 color difference.
	CIEDE2000 Metric = "ciede2000"
)

// ValidMetrics returns the accepted metric names.
func ValidMetrics() []Metric {
	return []Metric{Euclidean, CIEDE2000}
}

// ParseMetric resolves a metric name. The empty string selects Euclidean;
// "cie76" and "cie2000" are accepted as aliases.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean", "cie76":
		return Euclidean, nil
	case "ciede2000", "cie2000":
		return CIEDE2000, nil
	default:
		return "", fmt.Errorf("unknown metric: %s (valid metrics: %v)", name, ValidMetrics())
	}
}

// Distance computes the ΔE between a and b with the selected metric.
// An unrecognized metric falls back to Euclidean.
func (m Metric) Distance(a, b colorspace.LAB) float64 {
	if m == CIEDE2000 {
		return ciede2000(a, b)
	}
	return DeltaE(a, b)
}

// ciede2000 delegates to go-colorful, which works on LAB scaled by 1/100.
func ciede2000(a, b colorspace.LAB) float64 {
	ca := colorful.Lab(a.L/100, a.A/100, a.B/100)
	cb := colorful.Lab(b.L/100, b.A/100, b.B/100)
	return ca.DistanceCIEDE2000(cb) * 100
}
