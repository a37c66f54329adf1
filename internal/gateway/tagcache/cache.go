// Package tagcache holds raw response bodies keyed by cache tag. Reads for
// the same tag share one in-flight fetch; invalidating a tag bumps its
// generation so a fetch that started earlier cannot write stale data back.
package tagcache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the body for a tag. It runs on a context detached from
// any single caller so that one abandoned caller does not fail the others.
type FetchFunc func(ctx context.Context) ([]byte, error)

type Cache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	generations   map[string]uint64
	epoch         uint64
	invalidations [][]string
	flight        singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries:     make(map[string][]byte),
		generations: make(map[string]uint64),
	}
}

// Fetch returns the cached body for tag or loads it with fetch. Concurrent
// callers for the same tag and generation share a single fetch and receive
// the same bytes. A cancelled ctx abandons the wait, not the fetch.
func (c *Cache) Fetch(ctx context.Context, tag string, fetch FetchFunc) ([]byte, error) {
	c.mu.Lock()
	if body, ok := c.entries[tag]; ok {
		c.mu.Unlock()
		return clone(body), nil
	}
	gen, epoch := c.generations[tag], c.epoch
	c.mu.Unlock()

	key := tag + "#" + strconv.FormatUint(epoch, 10) + "." + strconv.FormatUint(gen, 10)
	detached := context.WithoutCancel(ctx)

	ch := c.flight.DoChan(key, func() (interface{}, error) {
		body, err := fetch(detached)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.epoch == epoch && c.generations[tag] == gen {
			c.entries[tag] = body
		}
		c.mu.Unlock()
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]byte)), nil
	}
}

// Store seeds tag with body, as when a create returns the new record.
func (c *Cache) Store(tag string, body []byte) {
	c.mu.Lock()
	c.entries[tag] = clone(body)
	c.mu.Unlock()
}

// Invalidate drops tags and records them as one invalidation event.
func (c *Cache) Invalidate(tags ...string) {
	if len(tags) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range tags {
		delete(c.entries, t)
		c.generations[t]++
	}
	c.invalidations = append(c.invalidations, append([]string(nil), tags...))
}

// Valid reports whether tag currently answers without a network round trip.
func (c *Cache) Valid(tag string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[tag]
	return ok
}

// Peek returns the cached body for tag without fetching.
func (c *Cache) Peek(tag string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries[tag]
	if !ok {
		return nil, false
	}
	return clone(body), true
}

// Invalidations returns every invalidation event in order.
func (c *Cache) Invalidations() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]string, len(c.invalidations))
	for i, tags := range c.invalidations {
		out[i] = append([]string(nil), tags...)
	}
	return out
}

// Reset drops every entry, as on logout. In-flight fetches are discarded
// too.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[string][]byte)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
