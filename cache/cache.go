package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/IvanBrykalov/costlru/internal/singleflight"
	"github.com/IvanBrykalov/costlru/internal/util"
	"github.com/IvanBrykalov/costlru/lru"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
	Cost    int64
}

// cache is a sharded key index over an lru.Engine.
// All methods are safe for concurrent use by multiple goroutines.
//
// Lock order: shard.mu, then the engine's lock. The engine reports removals
// through node.OnRemoved, which only touches the shard graveyard, so an
// eviction caused by any goroutine never waits on an index lock. A removal
// may reach the graveyard after the engine call that caused it returns
// (another goroutine was delivering); every path checks membership through
// the engine, so a late burial only delays the index cleanup.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	eng    *lru.Engine
	closed atomic.Bool

	opt Options[K, V]
	log *slog.Logger

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]
}

// New constructs a cache with the provided Options.
// Defaults:
//   - nil Engine   -> private engine from Limits (panics on invalid Limits)
//   - nil Metrics  -> NoopMetrics
//   - nil Cost     -> 1 per entry
//   - Shards <= 0  -> auto, rounded up to the next power of two
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Engine == nil {
		if opt.Limits.Logger == nil {
			opt.Limits.Logger = opt.Logger
		}
		opt.Engine = lru.MustNew(opt.Limits)
	}

	n := util.ShardCount(opt.Shards)
	c := &cache[K, V]{
		shards: make([]*shard[K, V], n),
		eng:    opt.Engine,
		opt:    opt,
		log:    opt.Logger.With(slog.String("engine", opt.Engine.Name())),
	}
	for i := range c.shards {
		c.shards[i] = newShard[K, V](opt.OnEvict)
	}
	return c
}

// ---- Cache[K,V] implementation ----

// Add inserts k→v only if k is absent.
func (c *cache[K, V]) Add(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	cost := c.costOf(v)
	s := c.getShard(k)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()

	if n, ok := s.m[k]; ok {
		if c.eng.Contains(n) {
			return false
		}
		// Dropped by the engine; its OnRemoved has not reached us yet.
		s.deleteLocked(n)
	}
	return c.insertLocked(s, k, v, cost)
}

// Set inserts or replaces k→v. A replaced value is re-costed and promoted
// through Touch; if its new cost is above the engine's per-entry limit the
// key is dropped and Set returns false.
func (c *cache[K, V]) Set(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	cost := c.costOf(v)
	s := c.getShard(k)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()

	if n, ok := s.m[k]; ok {
		n.cost.Store(cost)
		if c.eng.Touch(n) {
			n.val = v
			s.rechargeLocked(n, cost)
			s.drainLocked()
			return true
		}
		// Either already dropped by the engine, or dropped just now as
		// oversize. Forget the node and fall through to a fresh insert,
		// which the engine refuses in the oversize case.
		s.drainLocked()
		if cur, ok := s.m[k]; ok && cur == n {
			s.deleteLocked(n)
		}
	}
	return c.insertLocked(s, k, v, cost)
}

// Get returns the value for k and promotes it on hit.
func (c *cache[K, V]) Get(k K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}
	s := c.getShard(k)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()

	n, ok := s.m[k]
	if ok && c.eng.Touch(n) {
		v := n.val
		s.drainLocked()
		s.hits.Add(1)
		c.opt.Metrics.Hit()
		return v, true
	}
	if ok {
		s.drainLocked()
		if cur, found := s.m[k]; found && cur == n {
			s.deleteLocked(n)
		}
	}
	s.misses.Add(1)
	c.opt.Metrics.Miss()
	return zero, false
}

// Peek returns the value for k without changing its recency.
func (c *cache[K, V]) Peek(k K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}
	s := c.getShard(k)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()

	if n, ok := s.m[k]; ok && c.eng.Contains(n) {
		return n.val, true
	}
	return zero, false
}

// Contains reports whether k is resident, without changing its recency.
func (c *cache[K, V]) Contains(k K) bool {
	_, ok := c.Peek(k)
	return ok
}

// Remove deletes k if present and returns true on success.
func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	s := c.getShard(k)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()

	n, ok := s.m[k]
	if !ok {
		return false
	}
	s.deleteLocked(n)
	// nil means the engine evicted n first; its OnEvict is still due.
	removed := c.eng.Remove(n) != nil
	s.drainLocked()
	return removed
}

// Keys returns the resident keys in no particular order.
func (c *cache[K, V]) Keys() []K {
	var out []K
	for _, s := range c.shards {
		s.mu.Lock()
		s.drainLocked()
		for k := range s.m {
			out = append(out, k)
		}
		s.mu.Unlock()
	}
	return out
}

// Len returns the number of resident entries across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		s.drainLocked()
		total += len(s.m)
		s.mu.Unlock()
	}
	return total
}

// Cost returns the summed cost of resident entries.
func (c *cache[K, V]) Cost() int64 {
	var total int64
	for _, s := range c.shards {
		s.mu.Lock()
		s.drainLocked()
		total += s.cost
		s.mu.Unlock()
	}
	return total
}

// Clear removes every entry of this cache from the engine.
func (c *cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.drainLocked()
		for _, n := range s.m {
			s.deleteLocked(n)
			c.eng.Remove(n)
		}
		s.drainLocked()
		s.mu.Unlock()
	}
}

// Close marks the cache as closed. Future operations are ignored.
// The engine is not cleared; it may be shared with other caches.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// Stats sums the per-shard counters.
func (c *cache[K, V]) Stats() Stats {
	var st Stats
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		s.mu.Lock()
		s.drainLocked()
		st.Entries += len(s.m)
		st.Cost += s.cost
		s.mu.Unlock()
	}
	return st
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
// If no Loader is configured, returns ErrNoLoader.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	v, _, err := c.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok := c.Peek(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			return v, err
		}
		if !c.Set(k, v) {
			// Still returned to the caller, just not cached.
			c.log.Debug("loaded value refused by engine", slog.Int64("cost", c.costOf(v)))
		}
		return v, nil
	})
	return v, err
}

// ---- helpers ----

// insertLocked links a fresh node into the engine and the index.
// The engine may evict nodes of this shard (even the new one) during Add;
// the final drain applies that before the shard lock is released.
func (c *cache[K, V]) insertLocked(s *shard[K, V], k K, v V, cost int64) bool {
	n := &node[K, V]{key: k, val: v, s: s}
	n.cost.Store(cost)
	if !c.eng.Add(n) {
		s.drainLocked()
		return false
	}
	s.storeLocked(n, cost)
	s.drainLocked()
	return true
}

// getShard picks a shard by hashing the key and masking with len-1.
// len(c.shards) is guaranteed to be a power of two.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(util.Hash(k), len(c.shards))]
}

// costOf computes the per-entry cost; nil Cost means 1 per entry.
func (c *cache[K, V]) costOf(v V) int64 {
	if c.opt.Cost == nil {
		return 1
	}
	if cost := c.opt.Cost(v); cost > 0 {
		return cost
	}
	return 0
}
