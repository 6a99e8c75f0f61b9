package analysis

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
)

// CachedAnalyzer wraps an Analyzer with in-memory LRU caches keyed by the
// series content, so a dataset reload can never serve stale results.
type CachedAnalyzer struct {
	inner   Analyzer
	stats   *lruCache[domain.DescriptiveStats]
	trends  *lruCache[domain.TrendModel]
	metrics *observability.Metrics
}

// NewCachedAnalyzer creates a cache decorator around an analyzer. Each of the
// describe and fit caches holds up to maxEntries results.
func NewCachedAnalyzer(inner Analyzer, maxEntries int, metrics *observability.Metrics) *CachedAnalyzer {
	return &CachedAnalyzer{
		inner:   inner,
		stats:   newLRUCache[domain.DescriptiveStats](maxEntries),
		trends:  newLRUCache[domain.TrendModel](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedAnalyzer) Describe(series domain.Series) (domain.DescriptiveStats, error) {
	key := fingerprint(series)
	if result, ok := c.stats.get(key); ok {
		c.metrics.AnalysisCache.WithLabelValues("describe", "hit").Inc()
		return result, nil
	}
	c.metrics.AnalysisCache.WithLabelValues("describe", "miss").Inc()

	result, err := c.inner.Describe(series)
	if err != nil {
		return result, err
	}
	c.stats.put(key, result)
	return result, nil
}

func (c *CachedAnalyzer) Fit(series domain.Series) (domain.TrendModel, error) {
	key := fingerprint(series)
	if result, ok := c.trends.get(key); ok {
		c.metrics.AnalysisCache.WithLabelValues("fit", "hit").Inc()
		return result, nil
	}
	c.metrics.AnalysisCache.WithLabelValues("fit", "miss").Inc()

	// Errors are not cached: they are cheap to recompute.
	result, err := c.inner.Fit(series)
	if err != nil {
		return result, err
	}
	c.trends.put(key, result)
	return result, nil
}

// fingerprint hashes the location and every point in order.
func fingerprint(series domain.Series) uint64 {
	buf := make([]byte, 0, len(series.Location)+1+16*len(series.Points))
	buf = append(buf, series.Location...)
	buf = append(buf, 0)
	for _, p := range series.Points {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(p.Time)))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Value))
	}
	return xxhash.Sum64(buf)
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[uint64]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   uint64
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[uint64]*entry[V]),
	}
}

func (c *lruCache[V]) get(key uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
