package service

import (
	"image"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/imaging"
)

// DefaultGridColor is used for grid lines when no color is given.
const DefaultGridColor = "#ff0000"

// GridRequest asks for a coordinate grid over an image.
type GridRequest struct {
	Spacing int    `json:"spacing"`
	Labels  *bool  `json:"labels"`
	Color   string `json:"color"`
}

// Grid renders img with a labeled coordinate grid. Labels are on unless
// switched off.
func (s *Service) Grid(img image.Image, req GridRequest) (*imaging.Preview, error) {
	if req.Spacing < 0 {
		return nil, invalid("spacing must not be negative, got %d", req.Spacing)
	}
	hex := req.Color
	if hex == "" {
		hex = DefaultGridColor
	}
	c, err := colorspace.ParseHex(hex)
	if err != nil {
		return nil, err
	}
	labels := true
	if req.Labels != nil {
		labels = *req.Labels
	}
	return imaging.Grid(img, imaging.GridOptions{Spacing: req.Spacing, Labels: labels, Color: c})
}

// GridFile is Grid for an image on disk.
func (s *Service) GridFile(path string, req GridRequest) (*imaging.Preview, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Grid(img, req)
}

// CompareRegionsRequest names two rectangles of one image.
type CompareRegionsRequest struct {
	Region1 *imaging.Region `json:"region1"`
	Region2 *imaging.Region `json:"region2"`
	Metric  string          `json:"metric"`
}

// RegionComparison is the distance between the average colors of two
// regions. Hex1 and Hex2 are those averages.
type RegionComparison struct {
	Region1 imaging.Region `json:"region1"`
	Region2 imaging.Region `json:"region2"`
	*DeltaEResult
}

// CompareRegions averages both regions, clamped to the image, and
// compares the results. It is how two parts of one garment photo are
// checked for a visible shade difference.
func (s *Service) CompareRegions(img image.Image, req CompareRegionsRequest) (*RegionComparison, error) {
	if req.Region1 == nil || req.Region2 == nil {
		return nil, invalid("region1 and region2 are required")
	}
	p := imaging.FromImage(img)

	c1, r1, err := imaging.AverageIn(p, *req.Region1)
	if err != nil {
		return nil, err
	}
	c2, r2, err := imaging.AverageIn(p, *req.Region2)
	if err != nil {
		return nil, err
	}

	d, err := s.Compare(c1.Hex(), c2.Hex(), req.Metric)
	if err != nil {
		return nil, err
	}
	return &RegionComparison{Region1: r1, Region2: r2, DeltaEResult: d}, nil
}

// CompareRegionsFile is CompareRegions for an image on disk.
func (s *Service) CompareRegionsFile(path string, req CompareRegionsRequest) (*RegionComparison, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.CompareRegions(img, req)
}
