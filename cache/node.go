package cache

import (
	"sync/atomic"

	"github.com/IvanBrykalov/costlru/lru"
)

// node is the lru.Entry this cache hands to the engine. It carries the key so
// an eviction can be traced back to the index, and its shard so OnRemoved
// knows where to report.
type node[K comparable, V any] struct {
	lru.Link

	key     K
	val     V     // guarded by s.mu
	charged int64 // cost counted in s.cost; guarded by s.mu

	cost atomic.Int64
	s    *shard[K, V]

	// evicted is set by OnEvicted, before OnRemoved buries the node, when the
	// engine dropped it on its own. reason is written before the flag.
	evicted atomic.Bool
	reason  lru.EvictReason
}

// Cost implements lru.Entry.
func (n *node[K, V]) Cost() int64 { return n.cost.Load() }

// OnAdded implements lru.Entry.
func (n *node[K, V]) OnAdded() {}

// OnEvicted implements lru.Evictable.
func (n *node[K, V]) OnEvicted(r lru.EvictReason) {
	n.reason = r
	n.evicted.Store(true)
}

// OnRemoved implements lru.Entry. It may run on any goroutine that drove the
// engine, including one holding a different shard lock, so it only queues.
func (n *node[K, V]) OnRemoved() { n.s.bury(n) }
