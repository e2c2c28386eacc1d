// Package cache memoizes multi-country loads for the dashboard. Entries are
// keyed by the complete selected country set, so changing the selection never
// returns rows of a different set.
package cache

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
)

// BatchLoader is the part of loader.Loader the cache wraps.
type BatchLoader interface {
	LoadAll(countries []string) *loader.Batch
}

// Unique drops repeated countries, keeping the first occurrence of each.
func Unique(countries []string) []string {
	out := make([]string, 0, len(countries))
	seen := make(map[string]bool, len(countries))
	for _, c := range countries {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Key normalizes a country selection: sorted and de-duplicated.
func Key(countries []string) string {
	set := Unique(countries)
	sort.Strings(set)
	return strings.Join(set, ",")
}

// Cache is an expiring LRU of combined loads.
type Cache struct {
	inner  BatchLoader
	cache  *lru.LRU[string, *loader.Batch]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New wraps inner with a memo of at most size entries living ttl each.
// A non-positive ttl disables expiry.
func New(inner BatchLoader, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		inner: inner,
		cache: lru.NewLRU[string, *loader.Batch](size, nil, ttl),
	}
}

// LoadAll returns the memoized batch for the selection, loading it on a miss.
// Repeated countries are loaded once. Only batches without failures are
// stored so a missing file is retried on the next request. A hit is returned
// with rows and Loaded in the order of this selection. The second result
// reports a cache hit.
func (c *Cache) LoadAll(countries []string) (*loader.Batch, bool) {
	selection := Unique(countries)
	key := Key(selection)
	if b, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return reorder(b, selection), true
	}
	c.misses.Add(1)

	b := c.inner.LoadAll(selection)
	if b.OK() && len(b.Failures) == 0 {
		c.cache.Add(key, b)
	}
	return b, false
}

// reorder arranges a cached batch by country in selection order. Cached
// batches have no failures, so every selected country is present.
func reorder(b *loader.Batch, selection []string) *loader.Batch {
	if slices.Equal(b.Loaded, selection) {
		return b
	}
	countries, ok := b.Table.Strings(solar.ColumnCountry)
	if !ok {
		return b
	}
	rows := make(map[string][]int, len(selection))
	for i, country := range countries {
		rows[country] = append(rows[country], i)
	}
	idx := make([]int, 0, len(countries))
	for _, country := range selection {
		idx = append(idx, rows[country]...)
	}
	if len(idx) != len(countries) {
		return b
	}
	return &loader.Batch{
		Table:   b.Table.Take(idx),
		Loaded:  slices.Clone(selection),
		Demoted: b.Demoted,
	}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.cache.Purge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
