package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/imaging"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/service"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeColor(w io.Writer, c service.ColorInfo) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "HEX\t%s\n", c.Hex)
	fmt.Fprintf(tw, "RGB\t%d, %d, %d\n", c.RGB.R, c.RGB.G, c.RGB.B)
	fmt.Fprintf(tw, "LAB\t%.2f, %.2f, %.2f\n", c.LAB.L, c.LAB.A, c.LAB.B)
	fmt.Fprintf(tw, "CMYK\t%d%%, %d%%, %d%%, %d%%\n", c.CMYK.C, c.CMYK.M, c.CMYK.Y, c.CMYK.K)
	return tw.Flush()
}

func writeMatches(w io.Writer, res *service.MatchResult) error {
	fmt.Fprintf(w, "Input %s, %s, %d colors compared from %s\n", res.InputHex, res.Metric, res.TotalCompared, res.Source)
	if res.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", res.Warning)
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(w, "No matches.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tCODE\tNAME\tHEX\tΔE\tSIMILARITY\tMATCH")
	for i, r := range res.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.1f%%\t%s\n",
			i+1, r.Entry.Code, r.Entry.Name, r.UsedHex, r.DeltaE, r.Similarity, r.Band.Description())
	}
	return tw.Flush()
}

func writeDeltaE(w io.Writer, res *service.DeltaEResult) error {
	fmt.Fprintf(w, "%s vs %s (%s)\n", res.Hex1, res.Hex2, res.Metric)
	tw := newTable(w)
	fmt.Fprintf(tw, "ΔE\t%.2f\n", res.DeltaE)
	fmt.Fprintf(tw, "Similarity\t%.1f%%\n", res.Similarity)
	fmt.Fprintf(tw, "Match\t%s\n", res.Description)
	return tw.Flush()
}

func writeAdjusted(w io.Writer, res *service.AdjustResult) error {
	steps := "none"
	if len(res.Steps) > 0 {
		steps = strings.Join(res.Steps, " → ")
	}
	fmt.Fprintf(w, "%s → %s (%s)\n", res.InputHex, res.Hex, steps)
	return writeColor(w, res.ColorInfo)
}

func writeSample(w io.Writer, res *service.SampleResult) error {
	r := res.Region
	fmt.Fprintf(w, "Region (%d,%d)-(%d,%d), %dx%d px\n", r.X1, r.Y1, r.X2, r.Y2, r.Width(), r.Height())
	if err := writeColor(w, res.ColorInfo); err != nil {
		return err
	}
	if res.Matches != nil {
		fmt.Fprintln(w)
		return writeMatches(w, res.Matches)
	}
	return nil
}

func writeExtraction(w io.Writer, res *service.ImageMatchResult) error {
	ex := res.Extraction
	method := string(ex.Method)
	if ex.Clusters > 0 {
		method = fmt.Sprintf("%s, k=%d", method, ex.Clusters)
	}
	fmt.Fprintf(w, "Dominant color %s (%s)\n", ex.Hex, method)
	if ex.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", ex.Note)
	}
	if res.FabricMode {
		fmt.Fprintf(w, "Fabric compensated %s\n", res.ExtractedHex)
	}
	if res.LightnessBoost != 1 {
		fmt.Fprintf(w, "Lightness boost ×%g\n", res.LightnessBoost)
	}
	fmt.Fprintln(w)
	return writeMatches(w, res.MatchResult)
}

func writePaletteInfo(w io.Writer, info *service.PaletteInfo) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Source\t%s\n", info.Source)
	fmt.Fprintf(tw, "Colors\t%d\n", info.Entries)
	fmt.Fprintf(tw, "Loaded\t%s\n", info.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "Cache TTL\t%s\n", info.CacheTTL)
	if info.Warning != "" {
		fmt.Fprintf(tw, "Warning\t%s\n", info.Warning)
	}
	return tw.Flush()
}

func writeLookup(w io.Writer, res *service.LookupResult) error {
	e := res.Entry
	tw := newTable(w)
	fmt.Fprintf(tw, "Code\t%s\n", e.Code)
	fmt.Fprintf(tw, "Name\t%s\n", e.Name)
	fmt.Fprintf(tw, "Reference\t%s\n", e.ReferenceHex)
	if e.ExtractedHex != "" {
		fmt.Fprintf(tw, "Extracted\t%s\n", e.ExtractedHex)
	}
	if e.SwatchURL != "" {
		fmt.Fprintf(tw, "Swatch\t%s\n", e.SwatchURL)
	}
	if e.OriginalImageLink != "" {
		fmt.Fprintf(tw, "Image\t%s\n", e.OriginalImageLink)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.Color != nil {
		return writeColor(w, *res.Color)
	}
	return nil
}

// writePreview decodes a preview and writes it as a PNG file.
func writePreview(path string, p *imaging.Preview) error {
	if p == nil {
		return fmt.Errorf("no preview rendered")
	}
	data, err := base64.StdEncoding.DecodeString(p.ImageBase64)
	if err != nil {
		return fmt.Errorf("decoding preview: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	return nil
}
