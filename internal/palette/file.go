package palette

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// FileSource reads a palette from a local file. The format is chosen by
// extension: ".json" or ".hcl".
//
// JSON files hold an array of rows (or an object wrapping one under
// "items", "results" or "data"):
//
//	[{"code": "19-1664", "name": "True Red", "visual_hex": "#bf1932"}]
//
// HCL files hold one labeled block per color:
//
//	color "19-1664" {
//	  name          = "True Red"
//	  hex           = "#bf1932"
//	  extracted_hex = "#c01a33"
//	}
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return "file"
}

// Load reads and decodes the file. The context is unused.
func (s *FileSource) Load(_ context.Context) ([]Entry, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("%w: file path is empty", ErrNoSource)
	}

	src, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading palette file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".json":
		return decodeJSON(src)
	case ".hcl":
		return decodeHCL(src, s.Path)
	default:
		return nil, fmt.Errorf("unsupported palette file extension %q (want .json or .hcl)", ext)
	}
}

// decodeJSON accepts a bare array of rows or an object wrapping the rows.
func decodeJSON(src []byte) ([]Entry, error) {
	var rows []record
	if err := json.Unmarshal(src, &rows); err != nil {
		var wrapped struct {
			Items   []record `json:"items"`
			Results []record `json:"results"`
			Data    []record `json:"data"`
		}
		if err2 := json.Unmarshal(src, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decoding palette JSON: %w", err)
		}
		switch {
		case len(wrapped.Items) > 0:
			rows = wrapped.Items
		case len(wrapped.Results) > 0:
			rows = wrapped.Results
		default:
			rows = wrapped.Data
		}
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return normalize(entries), nil
}

// hclPalette is the gohcl decoding target for HCL palette files.
type hclPalette struct {
	Colors []hclColor `hcl:"color,block"`
}

type hclColor struct {
	Code         string `hcl:"code,label"`
	Name         string `hcl:"name,optional"`
	Hex          string `hcl:"hex,optional"`
	ExtractedHex string `hcl:"extracted_hex,optional"`
	OriginalLink string `hcl:"original_link,optional"`
	SwatchURL    string `hcl:"swatch_url,optional"`
}

func decodeHCL(src []byte, filename string) ([]Entry, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	var raw hclPalette
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding palette: %s", diags.Error())
	}

	entries := make([]Entry, 0, len(raw.Colors))
	for _, c := range raw.Colors {
		entries = append(entries, Entry{
			Code:              c.Code,
			Name:              c.Name,
			ReferenceHex:      c.Hex,
			ExtractedHex:      c.ExtractedHex,
			OriginalImageLink: c.OriginalLink,
			SwatchURL:         c.SwatchURL,
		})
	}
	return normalize(entries), nil
}
