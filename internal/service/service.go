// Package service runs the color matching flows shared by the MCP server
// and the command line: HEX matching, image extraction, region sampling and
// palette queries against the catalog's current palette.
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/adjust"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/config"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/imaging"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/matcher"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/metric"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/palette"
)

// ErrInvalidArgument marks a request that cannot be served as given.
var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Service binds the configuration, the palette catalog and an image cache.
type Service struct {
	cfg     *config.Config
	catalog *palette.Catalog
	cache   *imaging.ImageCache
	logger  hclog.Logger
}

// New returns a Service. A nil logger discards output.
func New(cfg *config.Config, catalog *palette.Catalog, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		cfg:     cfg,
		catalog: catalog,
		cache:   imaging.NewImageCache(),
		logger:  logger,
	}
}

// Config returns the settings the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// MatchOptions are the ranking parameters every matching request accepts.
// Zero values select the configured defaults.
type MatchOptions struct {
	Limit        int    `json:"limit"`
	UseExtracted *bool  `json:"use_extracted"`
	Metric       string `json:"metric"`
}

// MatchResult is a ranked list of palette entries for one input color.
type MatchResult struct {
	InputHex      string           `json:"input_hex"`
	Metric        metric.Metric    `json:"metric"`
	Source        string           `json:"catalog_source"`
	Warning       string           `json:"warning,omitempty"`
	TotalCompared int              `json:"total_compared"`
	Results       []matcher.Result `json:"results"`
}

func (s *Service) resolve(o MatchOptions) (matcher.Options, int, error) {
	name := o.Metric
	if name == "" {
		name = s.cfg.Match.Metric
	}
	m, err := metric.ParseMetric(name)
	if err != nil {
		return matcher.Options{}, 0, invalid("%v", err)
	}
	useExtracted := s.cfg.Match.UseExtracted
	if o.UseExtracted != nil {
		useExtracted = *o.UseExtracted
	}
	return matcher.Options{UseExtracted: useExtracted, Metric: m}, s.cfg.Match.ClampLimit(o.Limit), nil
}

func (s *Service) matchLab(ctx context.Context, inputHex string, lab colorspace.LAB, o MatchOptions) (*MatchResult, error) {
	opts, limit, err := s.resolve(o)
	if err != nil {
		return nil, err
	}
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading palette: %w", err)
	}

	all := matcher.FindSimilarLab(lab, snap.Palette.Entries(), opts, 0)
	total := len(all)
	if len(all) > limit {
		all = all[:limit]
	}

	s.logger.Debug("matched", "input", inputHex, "metric", opts.Metric, "compared", total, "source", snap.Source)
	return &MatchResult{
		InputHex:      inputHex,
		Metric:        opts.Metric,
		Source:        snap.Source,
		Warning:       snap.Warning,
		TotalCompared: total,
		Results:       all,
	}, nil
}

// HexMatchRequest matches a HEX color.
type HexMatchRequest struct {
	Hex string `json:"hex"`

	// LightnessBoost scales L* before matching. 0 and 1 leave it unchanged.
	LightnessBoost float64 `json:"lightness_boost"`

	MatchOptions
}

// MatchHex ranks the palette against a HEX color.
func (s *Service) MatchHex(ctx context.Context, req HexMatchRequest) (*MatchResult, error) {
	hex, err := colorspace.NormalizeHex(req.Hex)
	if err != nil {
		return nil, err
	}
	lab, err := colorspace.HexToLab(hex)
	if err != nil {
		return nil, err
	}
	if !validFactor(req.LightnessBoost, true) {
		return nil, invalid("lightness_boost must be positive, got %g", req.LightnessBoost)
	}
	if req.LightnessBoost > 0 && req.LightnessBoost != 1 {
		lab = adjust.BoostLab(lab, req.LightnessBoost)
	}
	return s.matchLab(ctx, hex, lab, req.MatchOptions)
}

// ImageMatchRequest controls the image matching flow. Nil and zero fields
// select the configured defaults.
type ImageMatchRequest struct {
	Method         string   `json:"method"`
	Clusters       int      `json:"n_clusters"`
	FabricMode     *bool    `json:"fabric_mode"`
	LightnessBoost *float64 `json:"lightness_boost"`

	MatchOptions
}

// ImageMatchResult reports each stage of the image matching flow.
type ImageMatchResult struct {
	Extraction imaging.Extraction `json:"extraction"`

	// ExtractedHex is the extracted color after fabric compensation; it is
	// the color the palette was matched against, before the lightness boost.
	ExtractedHex   string  `json:"extracted_hex"`
	FabricMode     bool    `json:"fabric_mode"`
	LightnessBoost float64 `json:"lightness_boost"`

	*MatchResult
}

// MatchImage extracts the dominant color of img, optionally compensates
// for fabric, boosts lightness in LAB and ranks the palette against it.
func (s *Service) MatchImage(ctx context.Context, img image.Image, req ImageMatchRequest) (*ImageMatchResult, error) {
	name := req.Method
	if name == "" {
		name = s.cfg.Image.Method
	}
	method, err := imaging.ParseMethod(name)
	if err != nil {
		return nil, invalid("%v", err)
	}
	clusters := req.Clusters
	if clusters == 0 {
		clusters = s.cfg.Image.Clusters
	}
	fabric := s.cfg.Image.FabricMode
	if req.FabricMode != nil {
		fabric = *req.FabricMode
	}
	boost := s.cfg.Image.LightnessBoost
	if req.LightnessBoost != nil {
		boost = *req.LightnessBoost
	}
	if !validFactor(boost, false) {
		return nil, invalid("lightness_boost must be positive, got %g", boost)
	}

	ex, err := imaging.Extract(img, imaging.ExtractOptions{Method: method, Clusters: clusters})
	if err != nil {
		return nil, fmt.Errorf("extracting dominant color: %w", err)
	}
	if ex.Note != "" {
		s.logger.Warn("extraction fell back", "note", ex.Note)
	}

	hex := ex.Hex
	if fabric {
		if hex, err = adjust.FabricCompensation(hex); err != nil {
			return nil, err
		}
	}
	lab, err := colorspace.HexToLab(hex)
	if err != nil {
		return nil, err
	}
	if boost != 1 {
		lab = adjust.BoostLab(lab, boost)
	}

	mr, err := s.matchLab(ctx, hex, lab, req.MatchOptions)
	if err != nil {
		return nil, err
	}
	return &ImageMatchResult{
		Extraction:     ex,
		ExtractedHex:   hex,
		FabricMode:     fabric,
		LightnessBoost: boost,
		MatchResult:    mr,
	}, nil
}

// MatchImageFile is MatchImage for an image on disk.
func (s *Service) MatchImageFile(ctx context.Context, path string, req ImageMatchRequest) (*ImageMatchResult, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.MatchImage(ctx, img, req)
}

// SampleRequest selects an image region either as a square of Size pixels
// centered on (X, Y) or as the rectangle X1,Y1 (inclusive) to X2,Y2
// (exclusive).
type SampleRequest struct {
	X    *int `json:"x"`
	Y    *int `json:"y"`
	Size int  `json:"size"`

	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
	X2 *int `json:"x2"`
	Y2 *int `json:"y2"`

	// Match ranks the palette against the sampled color.
	Match bool `json:"match"`

	// Preview attaches a PNG of the sampled region, scaled by Scale.
	Preview bool    `json:"preview"`
	Scale   float64 `json:"scale"`

	MatchOptions
}

// SampleResult is the averaged color of a region.
type SampleResult struct {
	Region imaging.Region `json:"region"`
	ColorInfo
	Matches *MatchResult     `json:"matches,omitempty"`
	Preview *imaging.Preview `json:"preview,omitempty"`
}

// Sample averages the requested region of img. The region is clamped to
// the image.
func (s *Service) Sample(ctx context.Context, img image.Image, req SampleRequest) (*SampleResult, error) {
	p := imaging.FromImage(img)

	var (
		avg    colorspace.RGB
		region imaging.Region
		err    error
	)
	switch {
	case req.X1 != nil && req.Y1 != nil && req.X2 != nil && req.Y2 != nil:
		avg, region, err = imaging.AverageIn(p, imaging.Region{X1: *req.X1, Y1: *req.Y1, X2: *req.X2, Y2: *req.Y2})
	case req.X != nil && req.Y != nil:
		size := req.Size
		if size == 0 {
			size = s.cfg.Image.SampleSize
		}
		avg, region, err = imaging.SampleAround(p, *req.X, *req.Y, size)
	default:
		return nil, invalid("either x and y, or x1, y1, x2 and y2, are required")
	}
	if err != nil {
		return nil, err
	}

	res := &SampleResult{Region: region, ColorInfo: describe(avg)}
	if req.Match {
		if res.Matches, err = s.matchLab(ctx, res.Hex, res.LAB, req.MatchOptions); err != nil {
			return nil, err
		}
	}
	if req.Preview {
		scale := req.Scale
		if scale == 0 {
			scale = 1
		}
		if res.Preview, err = imaging.Crop(img, region, scale); err != nil {
			return nil, fmt.Errorf("rendering preview: %w", err)
		}
	}
	return res, nil
}

// SampleFile is Sample for an image on disk.
func (s *Service) SampleFile(ctx context.Context, path string, req SampleRequest) (*SampleResult, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Sample(ctx, img, req)
}

// ImageInfo (re)loads an image into the cache and reports its metadata.
// A file replaced on disk since the last load is read again.
func (s *Service) ImageInfo(path string) (*imaging.ImageInfo, error) {
	s.cache.Evict(path)
	return imaging.LoadImageInfo(s.cache, path)
}

// DeltaEResult compares two colors.
type DeltaEResult struct {
	Hex1        string        `json:"hex1"`
	Hex2        string        `json:"hex2"`
	Metric      metric.Metric `json:"metric"`
	DeltaE      float64       `json:"delta_e"`
	Similarity  float64       `json:"similarity"`
	Band        metric.Band   `json:"band"`
	Description string        `json:"description"`
}

// Compare computes the distance between two HEX colors. An empty metric
// name selects the configured one.
func (s *Service) Compare(hex1, hex2, metricName string) (*DeltaEResult, error) {
	if metricName == "" {
		metricName = s.cfg.Match.Metric
	}
	m, err := metric.ParseMetric(metricName)
	if err != nil {
		return nil, invalid("%v", err)
	}
	a, err := colorspace.ParseHex(hex1)
	if err != nil {
		return nil, err
	}
	b, err := colorspace.ParseHex(hex2)
	if err != nil {
		return nil, err
	}

	d := m.Distance(colorspace.RGBToLab(a), colorspace.RGBToLab(b))
	band := metric.Interpret(d)
	return &DeltaEResult{
		Hex1:        a.Hex(),
		Hex2:        b.Hex(),
		Metric:      m,
		DeltaE:      d,
		Similarity:  metric.Similarity(d),
		Band:        band,
		Description: band.Description(),
	}, nil
}

// PaletteInfo describes the palette currently served.
type PaletteInfo struct {
	Source   string        `json:"catalog_source"`
	Entries  int           `json:"catalog_rows"`
	Warning  string        `json:"warning,omitempty"`
	LoadedAt time.Time     `json:"loaded_at"`
	CacheTTL time.Duration `json:"cache_ttl_ns"`
}

// PaletteInfo loads the palette if needed and describes it.
func (s *Service) PaletteInfo(ctx context.Context) (*PaletteInfo, error) {
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading palette: %w", err)
	}
	return &PaletteInfo{
		Source:   snap.Source,
		Entries:  snap.Palette.Len(),
		Warning:  snap.Warning,
		LoadedAt: snap.LoadedAt,
		CacheTTL: s.cfg.Palette.CacheTTL,
	}, nil
}

// ReloadPalette discards the cached palette and loads it again.
func (s *Service) ReloadPalette(ctx context.Context) (*PaletteInfo, error) {
	s.catalog.Invalidate()
	s.logger.Debug("palette reload requested")
	return s.PaletteInfo(ctx)
}

// LookupResult is a palette entry with its reference color expanded.
type LookupResult struct {
	Entry palette.Entry `json:"entry"`
	Color *ColorInfo    `json:"color,omitempty"`
}

// Lookup finds an entry by code. The match is case-insensitive.
func (s *Service) Lookup(ctx context.Context, code string) (*LookupResult, error) {
	if code == "" {
		return nil, invalid("code is required")
	}
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading palette: %w", err)
	}
	e, err := snap.Palette.Lookup(code)
	if err != nil {
		return nil, err
	}
	res := &LookupResult{Entry: e}
	if info, err := Describe(e.ReferenceHex); err == nil {
		res.Color = &info
	}
	return res, nil
}

// validFactor reports whether f can scale lightness. allowZero accepts 0
// as "unset".
func validFactor(f float64, allowZero bool) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	if allowZero && f == 0 {
		return true
	}
	return f > 0
}
