package cache

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/costlru/lru"
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
}

// Options configures a Cache. Zero values are safe; defaults applied in New():
//   - nil Engine   => private engine built from Limits
//   - Shards <= 0  => auto (rounded up to power of two)
//   - nil Cost     => every entry costs 1
//   - nil Metrics  => NoopMetrics
//   - nil Logger   => slog.Default()
type Options[K comparable, V any] struct {
	// Engine enforces capacity. Several caches may share one engine; each
	// then competes for the same cost budget in a single recency order.
	Engine *lru.Engine
	// Limits builds a private engine when Engine is nil.
	Limits lru.Options

	// Shards is the number of index shards (power of two recommended).
	Shards int

	// Cost weighs a value (e.g. its size in bytes). It is re-evaluated when
	// a key is set again, so a replaced value may cost more or less.
	Cost func(v V) int64

	// Loader fetches a value on miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for entries the engine dropped on its own (capacity
	// sweep, oversize update, engine Clear). It runs under a shard lock;
	// keep it light and do not call back into the cache.
	OnEvict func(k K, v V, reason lru.EvictReason)

	Metrics Metrics
	Logger  *slog.Logger
}
