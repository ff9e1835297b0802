package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/imaging"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/server"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/service"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio",
		Long: `Serve reads JSON-RPC 2.0 requests from stdin, one per line, and writes
responses to stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.svc, a.logger)
			err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				a.logger.Info("shutting down")
				return nil
			}
			return err
		},
	}
}

// addMatchFlags registers the ranking flags shared by match, sample and
// extract.
func addMatchFlags(cmd *cobra.Command, o *service.MatchOptions) {
	cmd.Flags().IntVarP(&o.Limit, "limit", "n", 0, "number of matches (default from config, max 20)")
	cmd.Flags().StringVar(&o.Metric, "metric", "", "distance formula: euclidean or ciede2000")
	cmd.Flags().Bool("use-extracted", true, "compare against colors extracted from swatch photos when available")
}

// applyMatchFlags copies flags that need "was it set" semantics.
func applyMatchFlags(cmd *cobra.Command, o *service.MatchOptions) error {
	if cmd.Flags().Changed("use-extracted") {
		v, err := cmd.Flags().GetBool("use-extracted")
		if err != nil {
			return err
		}
		o.UseExtracted = &v
	}
	return nil
}

func newMatchCommand(a *app) *cobra.Command {
	var req service.HexMatchRequest

	cmd := &cobra.Command{
		Use:   "match <hex>",
		Short: "Rank palette colors against a HEX color",
		Example: `  color-matcher match "#BF1932"
  color-matcher match bf1932 --limit 10 --metric ciede2000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := applyMatchFlags(cmd, &req.MatchOptions); err != nil {
				return err
			}
			req.Hex = args[0]

			res, err := a.svc.MatchHex(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeMatches(cmd.OutOrStdout(), res)
		},
	}
	addMatchFlags(cmd, &req.MatchOptions)
	cmd.Flags().Float64Var(&req.LightnessBoost, "boost", 0, "multiply L* by this factor before matching")
	return cmd
}

func newConvertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <hex>",
		Short: "Convert a HEX color to RGB, CIELAB and CMYK",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := service.Describe(args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			return writeColor(cmd.OutOrStdout(), info)
		},
	}
}

func newAdjustCommand(a *app) *cobra.Command {
	var (
		steps  []string
		boost  float64
		fabric bool
	)

	cmd := &cobra.Command{
		Use:   "adjust <hex>",
		Short: "Apply fabric compensation and lightness boost to a color",
		Long: `Adjust applies the --step adjustments in the order given, then --fabric,
then --boost. Every step rounds to HEX, so the order changes the result.`,
		Example: `  color-matcher adjust "#f0f0f0" --fabric --boost 1.05
  color-matcher adjust "#ffffff" --step lightness_boost:1.1 --step fabric`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []service.AdjustStep
			for _, s := range steps {
				st, err := parseStepFlag(s)
				if err != nil {
					return err
				}
				list = append(list, st)
			}
			if fabric {
				list = append(list, service.AdjustStep{Type: "fabric"})
			}
			if cmd.Flags().Changed("boost") {
				list = append(list, service.AdjustStep{Type: "lightness_boost", Factor: boost})
			}

			res, err := service.Adjust(args[0], list)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeAdjusted(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringArrayVar(&steps, "step", nil, "adjustment as type[:factor], repeatable (lightness_boost, fabric)")
	cmd.Flags().Float64Var(&boost, "boost", 1.05, "lightness boost factor, applied last")
	cmd.Flags().BoolVar(&fabric, "fabric", false, "apply fabric compensation")
	return cmd
}

// parseStepFlag parses "type" or "type:factor".
func parseStepFlag(s string) (service.AdjustStep, error) {
	name, factor, ok := strings.Cut(s, ":")
	step := service.AdjustStep{Type: name}
	if ok {
		f, err := strconv.ParseFloat(factor, 64)
		if err != nil {
			return step, fmt.Errorf("invalid step %q: %w", s, err)
		}
		step.Factor = f
	}
	return step, nil
}

func newSampleCommand(a *app) *cobra.Command {
	var (
		req      service.SampleRequest
		x, y     int
		previewF string
	)

	cmd := &cobra.Command{
		Use:   "sample <image>",
		Short: "Average the color of a square region of an image",
		Example: `  color-matcher sample shirt.jpg --x 320 --y 240 --size 21 --match
  color-matcher sample - --x 10 --y 10 < shirt.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := applyMatchFlags(cmd, &req.MatchOptions); err != nil {
				return err
			}
			req.X, req.Y = &x, &y
			req.Preview = previewF != ""

			res, err := a.sample(cmd, args[0], req)
			if err != nil {
				return err
			}
			if previewF != "" {
				if err := writePreview(previewF, res.Preview); err != nil {
					return err
				}
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeSample(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&x, "x", 0, "center X coordinate")
	cmd.Flags().IntVar(&y, "y", 0, "center Y coordinate")
	cmd.Flags().IntVar(&req.Size, "size", 0, "side of the sampled square in pixels (default from config)")
	cmd.Flags().BoolVar(&req.Match, "match", false, "also rank the palette against the sampled color")
	cmd.Flags().StringVar(&previewF, "preview", "", "write the sampled region as PNG to this file")
	addMatchFlags(cmd, &req.MatchOptions)
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newExtractCommand(a *app) *cobra.Command {
	var (
		req    service.ImageMatchRequest
		fabric bool
		boost  float64
	)

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the dominant color of a photo and match it",
		Long: `Extract resizes the image, finds its dominant color ignoring near-white
and near-black pixels, optionally compensates for fabric texture, boosts
lightness and ranks the palette against the result.`,
		Example: `  color-matcher extract product.jpg
  color-matcher extract product.jpg --method kmeans --clusters 4 --fabric=false
  curl -s https://example.com/shirt.jpg | color-matcher extract -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			if err := applyMatchFlags(cmd, &req.MatchOptions); err != nil {
				return err
			}
			if cmd.Flags().Changed("fabric") {
				req.FabricMode = &fabric
			}
			if cmd.Flags().Changed("boost") {
				req.LightnessBoost = &boost
			}

			res, err := a.extract(cmd, args[0], req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeExtraction(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&req.Method, "method", "", "extraction method: average or kmeans (default from config)")
	cmd.Flags().IntVar(&req.Clusters, "clusters", 0, "k-means clusters, 1-8 (default from config)")
	cmd.Flags().BoolVar(&fabric, "fabric", true, "compensate for fabric texture (default from config)")
	cmd.Flags().Float64Var(&boost, "boost", 1.05, "lightness boost factor (default from config)")
	addMatchFlags(cmd, &req.MatchOptions)
	return cmd
}

func newGridCommand(a *app) *cobra.Command {
	var (
		req    service.GridRequest
		labels bool
		out    string
	)

	cmd := &cobra.Command{
		Use:     "grid <image>",
		Short:   "Draw a coordinate grid over an image",
		Long:    `Grid writes a PNG with labeled grid lines, to find the --x and --y values for sample.`,
		Example: `  color-matcher grid shirt.jpg --out shirt-grid.png --spacing 100`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			req.Labels = &labels

			p, err := a.svc.GridFile(args[0], req)
			if err != nil {
				return err
			}
			if err := writePreview(out, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", out, p.Width, p.Height)
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Spacing, "spacing", 0, "pixels between grid lines (default 50)")
	cmd.Flags().BoolVar(&labels, "labels", true, "print coordinates at intersections")
	cmd.Flags().StringVar(&req.Color, "color", "", "grid line color (default #ff0000)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newCompareCommand(a *app) *cobra.Command {
	var (
		metricName string
		r1, r2     []int
	)

	cmd := &cobra.Command{
		Use:   "compare <hex1> <hex2> | compare <image> --region1 x1,y1,x2,y2 --region2 x1,y1,x2,y2",
		Short: "Compute the color difference between two colors or two image regions",
		Example: `  color-matcher compare "#bf1932" "#be1a33" --metric ciede2000
  color-matcher compare shirt.jpg --region1 10,10,60,60 --region2 300,10,350,60`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}

			if len(args) == 2 {
				res, err := a.svc.Compare(args[0], args[1], metricName)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				return writeDeltaE(cmd.OutOrStdout(), res)
			}

			reg1, err := regionFlag("region1", r1)
			if err != nil {
				return err
			}
			reg2, err := regionFlag("region2", r2)
			if err != nil {
				return err
			}
			res, err := a.svc.CompareRegionsFile(args[0], service.CompareRegionsRequest{
				Region1: &reg1,
				Region2: &reg2,
				Metric:  metricName,
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Region 1 (%d,%d)-(%d,%d), region 2 (%d,%d)-(%d,%d)\n",
				res.Region1.X1, res.Region1.Y1, res.Region1.X2, res.Region1.Y2,
				res.Region2.X1, res.Region2.Y1, res.Region2.X2, res.Region2.Y2)
			return writeDeltaE(cmd.OutOrStdout(), res.DeltaEResult)
		},
	}
	cmd.Flags().StringVar(&metricName, "metric", "", "distance formula: euclidean or ciede2000")
	cmd.Flags().IntSliceVar(&r1, "region1", nil, "first region as x1,y1,x2,y2")
	cmd.Flags().IntSliceVar(&r2, "region2", nil, "second region as x1,y1,x2,y2")
	return cmd
}

func regionFlag(name string, v []int) (imaging.Region, error) {
	if len(v) != 4 {
		return imaging.Region{}, fmt.Errorf("--%s needs x1,y1,x2,y2", name)
	}
	return imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func newPaletteCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Inspect the reference palette",
	}

	var reload bool
	info := &cobra.Command{
		Use:   "info",
		Short: "Show the palette source and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			load := a.svc.PaletteInfo
			if reload {
				load = a.svc.ReloadPalette
			}
			res, err := load(cmdContext(cmd))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writePaletteInfo(cmd.OutOrStdout(), res)
		},
	}

	lookup := &cobra.Command{
		Use:   "lookup <code>",
		Short: "Show the palette entry with the given code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			res, err := a.svc.Lookup(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeLookup(cmd.OutOrStdout(), res)
		},
	}

	info.Flags().BoolVar(&reload, "reload", false, "bypass the palette cache")
	cmd.AddCommand(info, lookup)
	return cmd
}

// stdinArg in place of an image path reads the image from stdin.
const stdinArg = "-"

func readStdinImage(cmd *cobra.Command) (image.Image, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return imaging.DecodeBytes(data)
}

func (a *app) sample(cmd *cobra.Command, src string, req service.SampleRequest) (*service.SampleResult, error) {
	if src != stdinArg {
		return a.svc.SampleFile(cmdContext(cmd), src, req)
	}
	img, err := readStdinImage(cmd)
	if err != nil {
		return nil, err
	}
	return a.svc.Sample(cmdContext(cmd), img, req)
}

func (a *app) extract(cmd *cobra.Command, src string, req service.ImageMatchRequest) (*service.ImageMatchResult, error) {
	if src != stdinArg {
		return a.svc.MatchImageFile(cmdContext(cmd), src, req)
	}
	img, err := readStdinImage(cmd)
	if err != nil {
		return nil, err
	}
	return a.svc.MatchImage(cmdContext(cmd), img, req)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
