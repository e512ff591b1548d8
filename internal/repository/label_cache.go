package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheRecorder observes label cache lookups.
type CacheRecorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// LabelCache is a read-through cache for the graph's label set.
//
// Thread Safety:
//
//	Safe for concurrent use. Readers share an RWMutex; loads are collapsed
//	through singleflight so the store is queried at most once per
//	invalidation window. A load that races with Invalidate is returned to its
//	callers but not stored.
type LabelCache struct {
	mu         sync.RWMutex
	labels     []string
	loadedAt   time.Time
	valid      bool
	generation uint64

	ttl      time.Duration
	now      func() time.Time
	flight   singleflight.Group
	recorder CacheRecorder
}

// NewLabelCache creates a cache. A zero ttl keeps entries until Invalidate.
func NewLabelCache(ttl time.Duration) *LabelCache {
	return &LabelCache{ttl: ttl, now: time.Now}
}

// WithRecorder attaches a hit/miss recorder.
func (c *LabelCache) WithRecorder(rec CacheRecorder) *LabelCache {
	c.recorder = rec
	return c
}

// WithClock overrides the time provider (used primarily in tests).
func (c *LabelCache) WithClock(now func() time.Time) *LabelCache {
	if now != nil {
		c.now = now
	}
	return c
}

// Get returns the cached labels, loading them when absent or expired.
func (c *LabelCache) Get(ctx context.Context, load func(context.Context) ([]string, error)) ([]string, error) {
	c.mu.RLock()
	if c.valid && (c.ttl <= 0 || c.now().Sub(c.loadedAt) < c.ttl) {
		labels := append([]string(nil), c.labels...)
		c.mu.RUnlock()
		c.record(true)
		return labels, nil
	}
	gen := c.generation
	c.mu.RUnlock()
	c.record(false)

	// Detach from the caller so one cancelled request does not fail every waiter.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.flight.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		labels, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.labels = labels
			c.loadedAt = c.now()
			c.valid = true
		}
		c.mu.Unlock()
		return labels, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// Invalidate discards the cached labels; the next Get reloads them.
func (c *LabelCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.valid = false
	c.labels = nil
}

func (c *LabelCache) record(hit bool) {
	if c.recorder == nil {
		return
	}
	if hit {
		c.recorder.CacheHit("area_labels")
	} else {
		c.recorder.CacheMiss("area_labels")
	}
}
