package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// Method selects how Extract finds the dominant color.
type Method string

const (
	// MethodAverage is the filtered average computed by DominantColor.
	MethodAverage Method = "average"

	// MethodKMeans clusters the pixels and picks the largest cluster.
	MethodKMeans Method = "kmeans"
)

// Extraction defaults.
const (
	DefaultExtractSize = 100
	DefaultClusters    = 3
	MaxClusters        = 8
)

// ParseMethod resolves a method name. The empty string selects average.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "average", "avg", "mean":
		return MethodAverage, nil
	case "kmeans", "k-means", "cluster":
		return MethodKMeans, nil
	default:
		return "", fmt.Errorf("unknown extraction method: %s (valid methods: average, kmeans)", name)
	}
}

// ExtractOptions controls Extract.
type ExtractOptions struct {
	Method   Method
	Clusters int // k for MethodKMeans, clamped to [1, MaxClusters]
	Size     int // images are resized to Size×Size first; 0 means DefaultExtractSize
}

// Extraction is the outcome of Extract.
type Extraction struct {
	Color    colorspace.RGB `json:"rgb"`
	Hex      string         `json:"hex"`
	Method   Method         `json:"method"`
	Clusters int            `json:"clusters,omitempty"`
	Note     string         `json:"note,omitempty"`
}

// Extract finds the dominant color of a whole image.
//
// The image is first resized to a small square with Lanczos resampling,
// which both bounds the cost and smooths out texture such as fabric weave.
// With MethodKMeans the pixels are clustered and the center of the most
// populated cluster is returned. If clustering fails, the filtered average
// is used and Note says so.
func Extract(img image.Image, opts ExtractOptions) (Extraction, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Extraction{}, fmt.Errorf("%w: empty image", ErrDegenerateRegion)
	}

	size := opts.Size
	if size <= 0 {
		size = DefaultExtractSize
	}
	small := imaging.Resize(img, size, size, imaging.Lanczos)

	if opts.Method == MethodKMeans {
		k := ClampClusters(opts.Clusters)
		c, err := kmeansDominant(small, k, size)
		if err == nil {
			return Extraction{Color: c, Hex: c.Hex(), Method: MethodKMeans, Clusters: k}, nil
		}
		avg, avgErr := DominantColor(FromImage(small), DefaultWhiteThreshold, DefaultBlackThreshold)
		if avgErr != nil {
			return Extraction{}, avgErr
		}
		return Extraction{
			Color:  avg,
			Hex:    avg.Hex(),
			Method: MethodAverage,
			Note:   fmt.Sprintf("k-means failed, used average: %v", err),
		}, nil
	}

	avg, err := DominantColor(FromImage(small), DefaultWhiteThreshold, DefaultBlackThreshold)
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{Color: avg, Hex: avg.Hex(), Method: MethodAverage}, nil
}

// ClampClusters clamps k to [1, MaxClusters]; 0 selects DefaultClusters.
func ClampClusters(k int) int {
	if k == 0 {
		return DefaultClusters
	}
	return clampInt(k, 1, MaxClusters)
}

// kmeansDominant clusters the pixels of img that DominantColor would keep.
// Background pixels are made transparent, which the clusterer skips, and
// its own corner-based background masks are disabled.
func kmeansDominant(img image.Image, k, size int) (colorspace.RGB, error) {
	fg := maskBackground(img, DefaultWhiteThreshold, DefaultBlackThreshold)
	items, err := prominentcolor.KmeansWithAll(k, fg, prominentcolor.ArgumentNoCropping,
		uint(size), []prominentcolor.ColorBackgroundMask{})
	if err != nil {
		return colorspace.RGB{}, fmt.Errorf("clustering: %w", err)
	}

	var best *prominentcolor.ColorItem
	for i, item := range items {
		if best == nil || item.Cnt > best.Cnt {
			best = &items[i]
		}
	}
	if best == nil {
		return colorspace.RGB{}, fmt.Errorf("clustering returned no colors")
	}
	return colorspace.RGB{
		R: uint8(best.Color.R),
		G: uint8(best.Color.G),
		B: uint8(best.Color.B),
	}, nil
}

// maskBackground returns a copy of img in which every pixel with all
// channels above white, or all below black, is fully transparent.
func maskBackground(img image.Image, white, black uint8) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
		if (r > white && g > white && b > white) || (r < black && g < black && b < black) {
			out.Pix[i+3] = 0
		}
	}
	return out
}
