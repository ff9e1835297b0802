package palette

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
)

// Source loads palette entries from somewhere.
type Source interface {
	// Name identifies the source in logs and in Catalog results.
	Name() string

	// Load fetches every entry. Implementations return normalized entries.
	Load(ctx context.Context) ([]Entry, error)
}

// SourceSpec describes a source by kind. Only the fields the kind needs
// are read.
type SourceSpec struct {
	Kind   string // "file", "http" or "postgres"
	Path   string
	URL    string
	APIKey string
	DSN    string
}

// Open builds the Source described by spec.
func Open(spec SourceSpec) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Kind)) {
	case "file", "":
		return NewFileSource(spec.Path), nil
	case "http":
		return NewHTTPSource(spec.URL, spec.APIKey), nil
	case "postgres":
		return NewPostgresSource(spec.DSN), nil
	default:
		return nil, fmt.Errorf("unknown palette source %q (want file, http or postgres)", spec.Kind)
	}
}

// StaticSource serves a fixed list of entries.
type StaticSource struct {
	Label   string
	Entries []Entry
}

func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s StaticSource) Load(_ context.Context) ([]Entry, error) {
	return normalize(s.Entries), nil
}

// record is the loose row shape shared by the JSON file format and the
// HTTP catalog API. Several key spellings are accepted for the same field.
type record struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	VisualHex    string          `json:"visual_hex"`
	HexCode      string          `json:"hex_code"`
	Hex          string          `json:"hex"`
	ExtractedHex string          `json:"extracted_hex"`
	OriginalLink string          `json:"original_link"`
	SwatchURL    string          `json:"swatch_url"`
	SwatchImg    json.RawMessage `json:"swatch_img"`
}

func (r record) entry() Entry {
	return Entry{
		Code:              r.Code,
		Name:              r.Name,
		ReferenceHex:      firstNonEmpty(r.VisualHex, r.HexCode, r.Hex),
		ExtractedHex:      r.ExtractedHex,
		OriginalImageLink: r.OriginalLink,
		SwatchURL:         firstNonEmpty(r.SwatchURL, imageURL(r.SwatchImg)),
	}
}

// imageURL accepts either a plain string or an attachment object carrying
// a "url" or "path" field.
func imageURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		URL  string `json:"url"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return firstNonEmpty(strings.TrimSpace(obj.URL), strings.TrimSpace(obj.Path))
	}
	return ""
}

// normalize cleans up loaded entries:
//   - rows without a code are dropped
//   - the first row wins when a code repeats
//   - valid hex values are rewritten in canonical form, invalid ones are
//     kept as-is so the matcher can skip them
//   - a missing reference hex is filled from the extracted hex
func normalize(in []Entry) []Entry {
	out := make([]Entry, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		e.Code = strings.TrimSpace(e.Code)
		key := codeKey(e.Code)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		e.Name = strings.TrimSpace(e.Name)
		e.ReferenceHex = canonicalHex(e.ReferenceHex)
		e.ExtractedHex = canonicalHex(e.ExtractedHex)
		e.OriginalImageLink = strings.TrimSpace(e.OriginalImageLink)
		e.SwatchURL = strings.TrimSpace(e.SwatchURL)
		if e.ReferenceHex == "" {
			e.ReferenceHex = e.ExtractedHex
		}
		out = append(out, e)
	}
	return out
}

func canonicalHex(s string) string {
	s = strings.TrimSpace(s)
	if h, err := colorspace.NormalizeHex(s); err == nil {
		return h
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
