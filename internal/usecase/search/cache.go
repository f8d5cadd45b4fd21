package search

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kailas-cloud/lookdex/internal/domain/search/query"
	"github.com/kailas-cloud/lookdex/internal/metrics"
)

// CachedCompiler shares compiled plans between Query instances holding equal values.
// Entries are keyed by the fingerprint hash and checked against the full fingerprint.
type CachedCompiler struct {
	next  query.Compiler
	cache *lru.Cache

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedCompiler wraps next with an LRU of size entries.
func NewCachedCompiler(next query.Compiler, size int) (*CachedCompiler, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("compile cache: %w", err)
	}
	return &CachedCompiler{next: next, cache: cache}, nil
}

// Compile returns a cached plan for fp or compiles and caches a new one.
// Failed compilations are not cached.
func (c *CachedCompiler) Compile(q *query.Query, fp query.Fingerprint) (*query.Compiled, error) {
	key := fp.Sum()
	if v, ok := c.cache.Get(key); ok {
		if compiled, ok := v.(*query.Compiled); ok && compiled.Matches(fp) {
			c.hits.Add(1)
			metrics.CompileCacheTotal.WithLabelValues("hit").Inc()
			return compiled, nil
		}
	}
	c.misses.Add(1)
	metrics.CompileCacheTotal.WithLabelValues("miss").Inc()

	compiled, err := c.next.Compile(q, fp)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, compiled)
	return compiled, nil
}

// HitRatio returns the share of lookups served from the cache.
func (c *CachedCompiler) HitRatio() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Len returns the number of cached plans.
func (c *CachedCompiler) Len() int { return c.cache.Len() }

// Purge drops every cached plan.
func (c *CachedCompiler) Purge() { c.cache.Purge() }
