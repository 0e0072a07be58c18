// Package cache implements the content-addressed optimization cache.
// Each key moves absent → pending → resolved; failures revert to absent
// so a later call retries. Concurrent requests for the same key share a
// single in-flight computation.
package cache

import (
	"context"
	"sync"

	"github.com/AnyUserName/imgpipe/internal/asset"
	"github.com/AnyUserName/imgpipe/internal/hasher"
)

// Key identifies one (originalURL, normalized options) request.
type Key string

// DeriveKey builds a deterministic key from an original locator and the
// canonical string form of its normalized options.
func DeriveKey(originalURL, normalizedOptions string) Key {
	return Key(hasher.RequestKey(originalURL, normalizedOptions))
}

// entry tracks one key's computation. Fields other than done are written
// exactly once, before done is closed; waiters read them after <-done.
type entry struct {
	url      string
	done     chan struct{}
	resolved bool
	asset    *asset.OptimizedAsset
	err      error
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// GetOrCompute returns the cached asset for key, joining an in-flight
// computation if one exists, or invoking compute otherwise. A resolved
// key returns the same *OptimizedAsset pointer on every call, so callers
// can detect hits by identity. On compute failure the error propagates
// to all waiters and the key reverts to absent.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, originalURL string, compute func() (*asset.OptimizedAsset, error)) (*asset.OptimizedAsset, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if e.resolved {
			c.mu.Unlock()
			return e.asset, nil
		}
		// Identical request in flight: wait for it instead of
		// computing again.
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-e.done:
		}
		return e.asset, e.err
	}

	e := &entry{url: originalURL, done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	a, err := compute()

	c.mu.Lock()
	e.asset, e.err = a, err
	if err != nil {
		// Failure is not cached: the key reverts to absent so a
		// future call retries. Guard against a Clear that already
		// replaced the map.
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
	} else {
		e.resolved = true
	}
	close(e.done)
	c.mu.Unlock()

	return a, err
}

// Clear evicts every entry regardless of state. In-flight computations
// are not cancelled; their eventual results are discarded rather than
// inserted, because completion only ever touches the entry it created.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()
}

// Remove evicts all resolved entries derived from originalURL, across
// every options variant.
func (c *Cache) Remove(originalURL string) {
	c.mu.Lock()
	for k, e := range c.entries {
		if e.url == originalURL && e.resolved {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len counts currently resolved entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.resolved {
			n++
		}
	}
	return n
}
