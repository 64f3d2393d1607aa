package repository

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tsukumogami/opamresolve/internal/log"
	"github.com/tsukumogami/opamresolve/internal/manifest"
	"github.com/tsukumogami/opamresolve/internal/override"
)

// Cached memoizes collections per package name and collapses concurrent
// fetches of the same name into one underlying call. Returned collections
// are shared between callers and must not be modified.
type Cached struct {
	underlying Repository
	logger     log.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cachedEntry
}

type cachedEntry struct {
	overlays *override.Set
	coll     *manifest.Collection
}

// NewCached wraps underlying with an in-process cache.
func NewCached(underlying Repository, opts ...Option) *Cached {
	o := buildOptions(opts)
	return &Cached{
		underlying: underlying,
		logger:     o.logger,
		entries:    make(map[string]cachedEntry),
	}
}

// Manifests implements Repository. Failed fetches are not cached.
func (c *Cached) Manifests(ctx context.Context, name string, overlays *override.Set) (*manifest.Collection, error) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	c.mu.RUnlock()
	if ok && entry.overlays == overlays {
		c.logger.Debug("Repository cache hit", "package", name)
		return entry.coll, nil
	}

	v, err, shared := c.group.Do(name, func() (any, error) {
		coll, err := c.underlying.Manifests(ctx, name, overlays)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[name] = cachedEntry{overlays: overlays, coll: coll}
		c.mu.Unlock()
		return coll, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Shared in-flight repository fetch", "package", name)
	}
	return v.(*manifest.Collection), nil
}
