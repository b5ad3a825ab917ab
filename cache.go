package apicontract

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds one Registry per contract source. Concurrent requests for a
// source that is still compiling wait for the same build. Failed builds are
// not cached.
type Cache struct {
	opts  []Option
	group singleflight.Group

	mu         sync.RWMutex
	registries map[string]*Registry
}

// NewCache returns an empty cache whose registries are built with opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts, registries: make(map[string]*Registry)}
}

// Get returns the registry for src, building it on first use. Files are
// identified by absolute path, other sources by their name.
func (c *Cache) Get(ctx context.Context, src Source) (*Registry, error) {
	id := src.identity()

	c.mu.RLock()
	r, ok := c.registries[id]
	c.mu.RUnlock()
	if ok {
		return r, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		c.mu.RLock()
		r, ok := c.registries[id]
		c.mu.RUnlock()
		if ok {
			return r, nil
		}

		r, err := Build(ctx, src, c.opts...)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.registries[id] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Registry), nil
}

// Forget drops the registry for src so the next Get rebuilds it.
func (c *Cache) Forget(src Source) {
	id := src.identity()
	c.mu.Lock()
	delete(c.registries, id)
	c.mu.Unlock()
	c.group.Forget(id)
}

// Len reports how many registries are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.registries)
}
