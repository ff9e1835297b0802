// Package config loads runtime settings from defaults, an optional config
// file, COLORMATCH_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/imaging"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/metric"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/palette"
)

// EnvPrefix is prepended to every environment variable, e.g.
// COLORMATCH_PALETTE_PATH for palette.path.
const EnvPrefix = "COLORMATCH"

// Config is the complete set of runtime settings.
type Config struct {
	Palette PaletteConfig `mapstructure:"palette"`
	Match   MatchConfig   `mapstructure:"match"`
	Image   ImageConfig   `mapstructure:"image"`
	Log     LogConfig     `mapstructure:"log"`
}

// PaletteConfig selects where reference colors come from.
type PaletteConfig struct {
	Source   string        `mapstructure:"source"`   // file, http or postgres
	Path     string        `mapstructure:"path"`     // file source
	URL      string        `mapstructure:"url"`      // http source base URL
	APIKey   string        `mapstructure:"api_key"`  // http source bearer token
	DSN      string        `mapstructure:"dsn"`      // postgres connection string
	Fallback string        `mapstructure:"fallback"` // optional second source kind
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// MatchConfig holds matching defaults.
type MatchConfig struct {
	Limit        int    `mapstructure:"limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	UseExtracted bool   `mapstructure:"use_extracted"`
	Metric       string `mapstructure:"metric"`
}

// ImageConfig holds defaults for image sampling and extraction.
type ImageConfig struct {
	LightnessBoost float64 `mapstructure:"lightness_boost"`
	FabricMode     bool    `mapstructure:"fabric_mode"`
	SampleSize     int     `mapstructure:"sample_size"`
	Method         string  `mapstructure:"method"`
	Clusters       int     `mapstructure:"clusters"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("palette.source", "file")
	v.SetDefault("palette.path", "pantone_data.json")
	v.SetDefault("palette.url", "")
	v.SetDefault("palette.api_key", "")
	v.SetDefault("palette.dsn", "")
	v.SetDefault("palette.fallback", "")
	v.SetDefault("palette.cache_ttl", palette.DefaultCacheTTL)

	v.SetDefault("match.limit", 5)
	v.SetDefault("match.max_limit", 20)
	v.SetDefault("match.use_extracted", true)
	v.SetDefault("match.metric", string(metric.Euclidean))

	v.SetDefault("image.lightness_boost", 1.05)
	v.SetDefault("image.fabric_mode", true)
	v.SetDefault("image.sample_size", 15)
	v.SetDefault("image.method", string(imaging.MethodAverage))
	v.SetDefault("image.clusters", imaging.DefaultClusters)

	v.SetDefault("log.level", "info")
}

// Options controls Load.
type Options struct {
	// File is an explicit config file. Empty means none is read.
	File string

	// Flags are bound to keys through FlagBindings when set.
	Flags *pflag.FlagSet
}

// FlagBindings maps config keys to the CLI flag names that override them.
var FlagBindings = map[string]string{
	"palette.source":   "palette-source",
	"palette.path":     "palette",
	"palette.fallback": "palette-fallback",
	"log.level":        "log-level",
}

// Load builds a Config.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		file, err := homedir.Expand(opts.File)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if opts.Flags != nil {
		for key, name := range FlagBindings {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	path, err := homedir.Expand(cfg.Palette.Path)
	if err != nil {
		return nil, fmt.Errorf("palette.path: %w", err)
	}
	cfg.Palette.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Palette.Source) {
	case "file", "http", "postgres":
	default:
		errs = append(errs, fmt.Errorf("palette.source: unknown source %q", c.Palette.Source))
	}
	switch strings.ToLower(c.Palette.Fallback) {
	case "", "file", "http", "postgres":
	default:
		errs = append(errs, fmt.Errorf("palette.fallback: unknown source %q", c.Palette.Fallback))
	}
	if c.Palette.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("palette.cache_ttl must not be negative"))
	}

	if c.Match.MaxLimit < 1 {
		errs = append(errs, fmt.Errorf("match.max_limit must be at least 1, got %d", c.Match.MaxLimit))
	}
	if c.Match.Limit < 1 || c.Match.Limit > c.Match.MaxLimit {
		errs = append(errs, fmt.Errorf("match.limit must be in [1, %d], got %d", c.Match.MaxLimit, c.Match.Limit))
	}
	if _, err := metric.ParseMetric(c.Match.Metric); err != nil {
		errs = append(errs, fmt.Errorf("match.metric: %w", err))
	}

	if c.Image.LightnessBoost <= 0 {
		errs = append(errs, fmt.Errorf("image.lightness_boost must be positive, got %g", c.Image.LightnessBoost))
	}
	if c.Image.SampleSize < 1 {
		errs = append(errs, fmt.Errorf("image.sample_size must be at least 1, got %d", c.Image.SampleSize))
	}
	if _, err := imaging.ParseMethod(c.Image.Method); err != nil {
		errs = append(errs, fmt.Errorf("image.method: %w", err))
	}
	if c.Image.Clusters < 1 || c.Image.Clusters > imaging.MaxClusters {
		errs = append(errs, fmt.Errorf("image.clusters must be in [1, %d], got %d", imaging.MaxClusters, c.Image.Clusters))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ClampLimit applies the configured default and upper bound to a requested
// result count: 0 selects the default, anything else is clamped to
// [1, MaxLimit].
func (m MatchConfig) ClampLimit(requested int) int {
	if requested == 0 {
		requested = m.Limit
	}
	if requested < 1 {
		return 1
	}
	if requested > m.MaxLimit {
		return m.MaxLimit
	}
	return requested
}

// SourceSpec returns the primary palette source description.
func (p PaletteConfig) SourceSpec() palette.SourceSpec {
	return p.spec(p.Source)
}

// FallbackSpec returns the fallback source description, or false when no
// fallback is configured.
func (p PaletteConfig) FallbackSpec() (palette.SourceSpec, bool) {
	if p.Fallback == "" {
		return palette.SourceSpec{}, false
	}
	return p.spec(p.Fallback), true
}

func (p PaletteConfig) spec(kind string) palette.SourceSpec {
	return palette.SourceSpec{
		Kind:   kind,
		Path:   p.Path,
		URL:    p.URL,
		APIKey: p.APIKey,
		DSN:    p.DSN,
	}
}
