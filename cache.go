package tropiiify

import (
	"context"
	"sync"
	"time"
)

type cachedTemplate struct {
	tmpl    Template
	fetched time.Time
}

// TemplateCache is an in-memory TTL cache in front of a TemplateSource.
// Watch mode re-runs exports against the same cache.
type TemplateCache struct {
	mu      sync.RWMutex
	entries map[string]cachedTemplate
	ttl     time.Duration
	src     TemplateSource
	now     func() time.Time
}

// NewTemplateCache creates a TemplateCache backed by src.
func NewTemplateCache(src TemplateSource, ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		entries: make(map[string]cachedTemplate),
		ttl:     ttl,
		src:     src,
		now:     time.Now,
	}
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TemplateCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedTemplate)
	c.mu.Unlock()
}

// Template returns the cached template, loading it when missing or stale.
func (c *TemplateCache) Template(ctx context.Context, id string) (Template, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetched) < c.ttl {
		return e.tmpl, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && c.now().Sub(e.fetched) < c.ttl {
		return e.tmpl, nil
	}
	t, err := c.src.Template(ctx, id)
	if err != nil {
		return Template{}, err
	}
	c.entries[id] = cachedTemplate{tmpl: t, fetched: c.now()}
	return t, nil
}
