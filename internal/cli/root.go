// Package cli provides the command-line interface for the color matcher.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/config"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/palette"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/server"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/service"
)

// app holds the state shared by every command of one invocation.
type app struct {
	configFile string
	jsonOutput bool

	cfg    *config.Config
	logger hclog.Logger
	svc    *service.Service
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "color-matcher",
		Short: "Match colors and product photos against a reference palette",
		Long: `color-matcher converts colors between HEX, RGB, CIELAB and CMYK, ranks
reference palette colors by perceptual distance, and extracts or samples
colors from product photos, compensating for fabric texture.

Run "color-matcher serve" to expose the same operations as MCP tools over
stdio.`,
		Version:      server.Version,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (YAML, JSON or TOML)")
	pf.String("palette", "", "palette file (.json or .hcl)")
	pf.String("palette-source", "", "palette source: file, http or postgres")
	pf.String("palette-fallback", "", "fallback palette source used when the primary fails")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error or off")
	pf.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newServeCommand(a),
		newMatchCommand(a),
		newConvertCommand(a),
		newAdjustCommand(a),
		newSampleCommand(a),
		newExtractCommand(a),
		newGridCommand(a),
		newCompareCommand(a),
		newPaletteCommand(a),
		newVersionCommand(),
	)
	return root
}

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

var build = BuildInfo{BuildTime: "unknown", GitCommit: "unknown"}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute(info BuildInfo) {
	if info.Version != "" {
		server.Version = info.Version
	}
	if info.BuildTime != "" {
		build.BuildTime = info.BuildTime
	}
	if info.GitCommit != "" {
		build.GitCommit = info.GitCommit
	}
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and wires the service. Flags set on the command
// line override the config file and environment.
func (a *app) setup(cmd *cobra.Command) error {
	if a.svc != nil {
		return nil
	}

	cfg, err := config.Load(config.Options{File: a.configFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())

	catalog, err := newCatalog(cfg.Palette, logger)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.svc = service.New(cfg, catalog, logger)
	return nil
}

// newCatalog opens the configured palette sources.
func newCatalog(p config.PaletteConfig, logger hclog.Logger) (*palette.Catalog, error) {
	primary, err := palette.Open(p.SourceSpec())
	if err != nil {
		return nil, fmt.Errorf("palette source: %w", err)
	}

	opts := []palette.CatalogOption{
		palette.WithTTL(p.CacheTTL),
		palette.WithLogger(logger.Named("catalog")),
	}
	if spec, ok := p.FallbackSpec(); ok {
		fallback, err := palette.Open(spec)
		if err != nil {
			return nil, fmt.Errorf("palette fallback: %w", err)
		}
		opts = append(opts, palette.WithFallback(fallback))
	}
	return palette.NewCatalog(primary, opts...), nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s (MCP %s)\n", server.Name, server.Version, server.ProtocolVersion)
			fmt.Fprintf(w, "  Build time: %s\n", build.BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", build.GitCommit)
		},
	}
}
