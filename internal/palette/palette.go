// Package palette holds the reference colors that inputs are matched
// against, and the sources they are loaded from.
//
// A Palette is an ordered, read-only list of entries keyed by a unique code.
// Entries are loaded through a Source (a local JSON or HCL file, an HTTP
// catalog API, or a Postgres table) and served through a Catalog, which
// caches the loaded palette for a TTL and can fall back to a second source
// when the primary one is unavailable.
package palette

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Lookup when no entry has the given code.
	ErrNotFound = errors.New("palette entry not found")

	// ErrNoSource is returned when a source is not configured well enough
	// to load anything (missing path, URL or DSN).
	ErrNoSource = errors.New("palette source not configured")
)

// Entry is a named reference color.
type Entry struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	ReferenceHex      string `json:"visual_hex"`
	ExtractedHex      string `json:"extracted_hex,omitempty"`
	OriginalImageLink string `json:"original_link,omitempty"`
	SwatchURL         string `json:"swatch_url,omitempty"`
}

// Palette is an immutable, ordered collection of entries.
type Palette struct {
	entries []Entry
	byCode  map[string]int
}

// New builds a palette from entries, keeping their order. Codes must be
// non-empty and unique (compared case-insensitively).
func New(entries []Entry) (*Palette, error) {
	p := &Palette{
		entries: make([]Entry, len(entries)),
		byCode:  make(map[string]int, len(entries)),
	}
	copy(p.entries, entries)

	for i, e := range p.entries {
		key := codeKey(e.Code)
		if key == "" {
			return nil, fmt.Errorf("entry %d has an empty code", i)
		}
		if prev, dup := p.byCode[key]; dup {
			return nil, fmt.Errorf("duplicate code %q (entries %d and %d)", e.Code, prev, i)
		}
		p.byCode[key] = i
	}
	return p, nil
}

// Entries returns a copy of the entries in palette order.
func (p *Palette) Entries() []Entry {
	if p == nil {
		return nil
	}
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Lookup finds an entry by code, ignoring case and surrounding whitespace.
func (p *Palette) Lookup(code string) (Entry, error) {
	if p != nil {
		if i, ok := p.byCode[codeKey(code)]; ok {
			return p.entries[i], nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, code)
}

func codeKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
