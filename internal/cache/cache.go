// Package cache memoizes expensive lookups under formatted keys and drops
// them again when the data behind them changes.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultTTL  = time.Hour
	DefaultSize = 1024
)

// Cache is an expiring LRU shared by every decorator built on top of it.
type Cache struct {
	lru     *expirable.LRU[string, any]
	observe Observer
}

// Observer is told about every lookup. name is the key up to its first colon.
type Observer func(name string, hit bool)

func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Observe installs o. Call it before the cache is shared.
func (c *Cache) Observe(o Observer) {
	c.observe = o
}

func (c *Cache) lookup(key string) (any, bool) {
	v, ok := c.lru.Get(key)
	if c.observe != nil {
		name, _, _ := strings.Cut(key, ":")
		c.observe(name, ok)
	}

	return v, ok
}

// Key formats a cache key, fmt-style.
func Key(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// Delete drops a key. Missing keys are fine.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// Cacheable wraps load so that its result is kept under key until it expires
// or is made stale.
//
// Errors are never cached.
func Cacheable[V any](c *Cache, key string, load func(context.Context) (V, error)) func(context.Context) (V, error) {
	return func(ctx context.Context) (V, error) {
		if v, ok := c.lookup(key); ok {
			if typed, ok := v.(V); ok {
				return typed, nil
			}
			slog.WarnContext(ctx, "cached value has unexpected type", "key", key)
		}

		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.lru.Add(key, v)

		return v, nil
	}
}

// Stale wraps a mutation so that key is dropped around it. The second drop
// catches a load that re-cached the old value while mutate was running.
func Stale(c *Cache, key string, mutate func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		c.Delete(key)
		if err := mutate(ctx); err != nil {
			return err
		}
		c.Delete(key)

		return nil
	}
}
