package cache

import (
	"sync"

	"github.com/IvanBrykalov/costlru/internal/util"
	"github.com/IvanBrykalov/costlru/lru"
)

// shard is an independent partition of the key index with its own lock.
// Recency and capacity live in the engine; the shard only maps keys to nodes
// and keeps a graveyard of nodes the engine has dropped.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu   sync.Mutex
	m    map[K]*node[K, V]
	cost int64 // summed charged cost of nodes in m

	// ---- graveyard: gmu is a leaf lock, never held while calling out ----
	gmu  sync.Mutex
	dead []*node[K, V]

	onEvict func(k K, v V, reason lru.EvictReason)

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
}

func newShard[K comparable, V any](onEvict func(K, V, lru.EvictReason)) *shard[K, V] {
	return &shard[K, V]{
		m:       make(map[K]*node[K, V]),
		onEvict: onEvict,
	}
}

// bury queues a node the engine no longer tracks. Called from OnRemoved,
// possibly while another shard's lock (or this one's) is held.
func (s *shard[K, V]) bury(n *node[K, V]) {
	s.gmu.Lock()
	s.dead = append(s.dead, n)
	s.gmu.Unlock()
}

// -------------------- internals (mu held) --------------------

// drainLocked applies queued engine removals to the index. A key is deleted
// only if it still maps to the dead node; OnEvict fires for every node the
// engine evicted, as opposed to ones the cache removed itself.
func (s *shard[K, V]) drainLocked() {
	s.gmu.Lock()
	dead := s.dead
	s.dead = nil
	s.gmu.Unlock()

	for _, n := range dead {
		if cur, ok := s.m[n.key]; ok && cur == n {
			s.deleteLocked(n)
		}
		if n.evicted.Load() && s.onEvict != nil {
			s.onEvict(n.key, n.val, n.reason)
		}
	}
}

func (s *shard[K, V]) storeLocked(n *node[K, V], cost int64) {
	s.m[n.key] = n
	n.charged = cost
	s.cost += cost
}

// rechargeLocked moves n's accounted cost to cost after a successful Touch.
func (s *shard[K, V]) rechargeLocked(n *node[K, V], cost int64) {
	s.cost += cost - n.charged
	n.charged = cost
}

func (s *shard[K, V]) deleteLocked(n *node[K, V]) {
	delete(s.m, n.key)
	s.cost -= n.charged
}
