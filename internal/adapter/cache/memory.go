package cache

import (
	"sort"
	"sync"
	"time"

	"fx-rate-proxy/internal/domain/model"
	"fx-rate-proxy/pkg/logger"
)

type cacheItem struct {
	entry model.CacheEntry
	seq   uint64
}

// MemoryCache keeps rates per currency pair and expires them lazily: an entry
// older than the TTL is dropped the next time it is looked up. All operations
// take the same mutex, so the check-then-delete in Lookup cannot interleave
// with a concurrent Store for the same pair.
type MemoryCache struct {
	cacheMap map[model.CurrencyPair]*cacheItem
	mutex    sync.Mutex
	cacheTTL time.Duration
	nextSeq  uint64
	now      func() time.Time
	log      *logger.Logger
}

type Option func(*MemoryCache)

// WithClock replaces time.Now. Used by tests to move time forward.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		c.now = now
	}
}

func NewMemoryCache(cacheTTL time.Duration, log *logger.Logger, opts ...Option) *MemoryCache {
	c := &MemoryCache{
		cacheMap: make(map[model.CurrencyPair]*cacheItem),
		cacheTTL: cacheTTL,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) TTL() time.Duration {
	return c.cacheTTL
}

func (c *MemoryCache) Lookup(pair model.CurrencyPair) (float64, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, found := c.cacheMap[pair]
	if !found {
		c.log.Debug("Cache miss", "key", pair.String())
		return 0, false
	}

	age := c.now().Sub(item.entry.CapturedAt)
	if age >= c.cacheTTL {
		delete(c.cacheMap, pair)
		c.log.Debug("Cache entry expired", "key", pair.String(), "age", age)
		return 0, false
	}

	c.log.Debug("Cache hit", "key", pair.String(), "age", age)
	return item.entry.Rate, true
}

// Store inserts or overwrites the rate for pair. An overwritten pair keeps its
// position in Keys.
func (c *MemoryCache) Store(pair model.CurrencyPair, rate float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry := model.CacheEntry{Rate: rate, CapturedAt: c.now()}
	if item, exists := c.cacheMap[pair]; exists {
		item.entry = entry
	} else {
		c.nextSeq++
		c.cacheMap[pair] = &cacheItem{entry: entry, seq: c.nextSeq}
	}
	c.log.Debug("Cache set", "key", pair.String(), "rate", rate)
}

func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := len(c.cacheMap)
	c.cacheMap = make(map[model.CurrencyPair]*cacheItem)
	c.log.Info("Cleared cache", "count", count)
}

// Size counts stored entries, including expired ones not yet looked up.
func (c *MemoryCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.cacheMap)
}

// Keys returns the stored pairs in insertion order.
func (c *MemoryCache) Keys() []model.CurrencyPair {
	type keyed struct {
		pair model.CurrencyPair
		seq  uint64
	}

	c.mutex.Lock()
	items := make([]keyed, 0, len(c.cacheMap))
	for pair, item := range c.cacheMap {
		items = append(items, keyed{pair: pair, seq: item.seq})
	}
	c.mutex.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })

	keys := make([]model.CurrencyPair, len(items))
	for i, it := range items {
		keys[i] = it.pair
	}
	return keys
}

// PurgeExpired drops every expired entry and reports how many were removed.
func (c *MemoryCache) PurgeExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for pair, item := range c.cacheMap {
		if now.Sub(item.entry.CapturedAt) >= c.cacheTTL {
			delete(c.cacheMap, pair)
			removed++
		}
	}

	c.log.Info("Cleared expired cache entries", "count", removed)
	return removed
}
