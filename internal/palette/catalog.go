package palette

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultCacheTTL is how long a loaded palette is served before reloading.
const DefaultCacheTTL = 60 * time.Second

// Snapshot is the palette a Catalog is currently serving.
type Snapshot struct {
	Palette  *Palette
	Source   string    // name of the source that served it; "<name>_fallback" for the fallback
	Warning  string    // set when the fallback or a stale palette is served
	LoadedAt time.Time // when the palette was last (re)loaded
}

// Catalog loads a palette from a primary source, caches it for a TTL, and
// falls back to a second source when the primary fails. When both fail and
// a palette was loaded before, the stale palette keeps being served.
//
// Catalog is safe for concurrent use. Loads are serialized.
type Catalog struct {
	primary  Source
	fallback Source
	ttl      time.Duration
	logger   hclog.Logger
	now      func() time.Time

	mu      sync.Mutex
	current Snapshot
	expires time.Time
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithFallback sets the source used when the primary one fails.
func WithFallback(s Source) CatalogOption {
	return func(c *Catalog) { c.fallback = s }
}

// WithTTL sets the cache lifetime. Values below one second are raised to
// one second.
func WithTTL(ttl time.Duration) CatalogOption {
	return func(c *Catalog) {
		if ttl < time.Second {
			ttl = time.Second
		}
		c.ttl = ttl
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l hclog.Logger) CatalogOption {
	return func(c *Catalog) { c.logger = l }
}

// NewCatalog returns a Catalog reading from primary.
func NewCatalog(primary Source, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		primary: primary,
		ttl:     DefaultCacheTTL,
		logger:  hclog.NewNullLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current palette, reloading it when the cache expired.
func (c *Catalog) Get(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.current.Palette != nil && now.Before(c.expires) {
		return c.current, nil
	}
	return c.reload(ctx, now)
}

// Invalidate drops the cache expiry so the next Get reloads. The current
// palette is kept for stale serving.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.expires = time.Time{}
	c.mu.Unlock()
}

func (c *Catalog) reload(ctx context.Context, now time.Time) (Snapshot, error) {
	if c.primary == nil {
		return Snapshot{}, ErrNoSource
	}

	snap, err := c.load(ctx, c.primary, c.primary.Name())
	if err != nil {
		c.logger.Warn("primary palette source failed", "source", c.primary.Name(), "error", err)
		primaryErr := err

		if c.fallback != nil {
			name := c.fallback.Name() + "_fallback"
			snap, err = c.load(ctx, c.fallback, name)
			if err == nil {
				snap.Warning = fmt.Sprintf("%s unavailable, using %s fallback: %v", c.primary.Name(), c.fallback.Name(), primaryErr)
			} else {
				c.logger.Warn("fallback palette source failed", "source", c.fallback.Name(), "error", err)
			}
		}

		if err != nil {
			if c.current.Palette == nil {
				return Snapshot{}, fmt.Errorf("loading palette from %s: %w", c.primary.Name(), primaryErr)
			}
			c.logger.Warn("serving stale palette", "source", c.current.Source, "loaded_at", c.current.LoadedAt)
			c.current.Warning = fmt.Sprintf("palette sources unavailable, serving data loaded at %s: %v",
				c.current.LoadedAt.Format(time.RFC3339), primaryErr)
			c.expires = now.Add(c.ttl)
			return c.current, nil
		}
	}

	snap.LoadedAt = now
	c.current = snap
	c.expires = now.Add(c.ttl)
	c.logger.Info("palette loaded", "source", snap.Source, "entries", snap.Palette.Len())
	return snap, nil
}

func (c *Catalog) load(ctx context.Context, src Source, name string) (Snapshot, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	p, err := New(normalize(entries))
	if err != nil {
		return Snapshot{}, fmt.Errorf("building palette from %s: %w", src.Name(), err)
	}
	return Snapshot{Palette: p, Source: name}, nil
}
