package idmap

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mudkipdev/rephoton/internal/errors"
)

// Ref identifies one Bluesky record: its at-uri, content id, and the uri of
// the viewer's like record on it (empty when not liked).
type Ref struct {
	URI     string `json:"uri"`
	CID     string `json:"cid"`
	LikeURI string `json:"like_uri,omitempty"`
}

// Liked reports whether the viewer has a like record on the referenced item.
func (r Ref) Liked() bool { return r.LikeURI != "" }

// Stats are cache counters. They are always collected.
type Stats struct {
	Hits       int64
	Misses     int64
	Observes   int64
	Collisions int64
	Size       int
}

// Counters are optional Prometheus counters a Cache also increments.
type Counters struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Observes   prometheus.Counter
	Collisions prometheus.Counter
}

// Cache maps local ids to the references they were derived from. It lives as
// long as the session that owns it. Entries are never persisted or evicted;
// only Invalidate removes them.
type Cache struct {
	mu   sync.RWMutex
	refs map[int32]Ref

	hits       atomic.Int64
	misses     atomic.Int64
	observes   atomic.Int64
	collisions atomic.Int64

	counters *Counters
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithCounters exports cache activity to Prometheus. A nil value is ignored.
func WithCounters(c *Counters) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.counters = c
		}
	}
}

// WithLogger sets the logger used to report collisions.
func WithLogger(l *slog.Logger) Option {
	return func(cache *Cache) {
		if l != nil {
			cache.logger = l
		}
	}
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		refs:   make(map[int32]Ref),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe records ref under Derive(ref.URI), replacing whatever was there,
// and returns the id.
func (c *Cache) Observe(ref Ref) int32 {
	return c.observe(ref, false)
}

// ObserveKeepLike is Observe for sources that carry no viewer state
// (notifications, reply parents): an existing like marker for the same uri
// survives.
func (c *Cache) ObserveKeepLike(ref Ref) int32 {
	return c.observe(ref, true)
}

func (c *Cache) observe(ref Ref, keepLike bool) int32 {
	id := Derive(ref.URI)

	c.mu.Lock()
	prev, exists := c.refs[id]
	if keepLike && ref.LikeURI == "" && exists && prev.URI == ref.URI {
		ref.LikeURI = prev.LikeURI
	}
	c.refs[id] = ref
	c.mu.Unlock()

	c.observes.Add(1)
	inc(c.counters, func(k *Counters) prometheus.Counter { return k.Observes })

	if exists && prev.URI != ref.URI {
		c.collisions.Add(1)
		inc(c.counters, func(k *Counters) prometheus.Counter { return k.Collisions })
		c.logger.Warn("local id collision, keeping newest reference",
			"id", id, "previous_uri", prev.URI, "uri", ref.URI)
	}
	return id
}

// Resolve returns the reference last observed under id. It fails with a
// NotFound error when id was never observed or has been invalidated.
func (c *Cache) Resolve(id int32) (Ref, error) {
	c.mu.RLock()
	ref, ok := c.refs[id]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		inc(c.counters, func(k *Counters) prometheus.Counter { return k.Misses })
		return Ref{}, errors.NotFound("idmap", "Resolve", fmt.Sprintf("id %d", id))
	}
	c.hits.Add(1)
	inc(c.counters, func(k *Counters) prometheus.Counter { return k.Hits })
	return ref, nil
}

// Invalidate forgets id. It is a no-op for unknown ids.
func (c *Cache) Invalidate(id int32) {
	c.mu.Lock()
	delete(c.refs, id)
	c.mu.Unlock()
}

// SetLike stores likeURI as the like marker for id; an empty likeURI clears
// it. The uri and cid of the entry are left untouched.
func (c *Cache) SetLike(id int32, likeURI string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, ok := c.refs[id]
	if !ok {
		return errors.NotFound("idmap", "SetLike", fmt.Sprintf("id %d", id))
	}
	ref.LikeURI = likeURI
	c.refs[id] = ref
	return nil
}

// Len returns the number of cached ids.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.refs)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Observes:   c.observes.Load(),
		Collisions: c.collisions.Load(),
		Size:       c.Len(),
	}
}

func inc(k *Counters, pick func(*Counters) prometheus.Counter) {
	if k == nil {
		return
	}
	if counter := pick(k); counter != nil {
		counter.Inc()
	}
}
