// Package cache provides a generic, sharded key/value cache whose capacity
// and recency are managed by an lru.Engine.
//
// Design
//
//   - Index: keys are spread over shards, each a map[K]*node guarded by its
//     own mutex. The default shard count is nextPow2(2*GOMAXPROCS).
//
//   - Eviction: every node is an lru.Entry. Set/Add hand new nodes to the
//     engine, Get touches them, Remove removes them. The engine decides what
//     to evict; when it drops a node, OnRemoved queues it in its shard's
//     graveyard and the next operation on that shard deletes the key.
//
//   - Cost: Options.Cost weighs values (bytes, rows, ...). Without it each
//     entry costs 1, so the engine limits behave as entry counts.
//
//   - Sharing: several caches (even with different key/value types) may use
//     one engine. They then share one budget and one recency order; Clear
//     only removes the calling cache's entries.
//
//   - GetOrLoad: coalesces concurrent loads for the same key.
//     If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss. Engine-level signals
//     (evictions, rejections, size) are configured on the engine.
//
// Basic usage
//
//	// Up to 10k entries; once crossed, evict down to 8k.
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Limits: lru.Options{MaxTotalCost: 10_000, TargetCost: 8_000},
//	})
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Remove("a")
//
// Byte budget shared by two caches
//
//	eng := lru.MustNew(lru.Options{
//	    MaxTotalCost: 256 << 20,
//	    TargetCost:   192 << 20,
//	    MaxEntryCost: 4 << 20,
//	})
//	pages := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Engine: eng,
//	    Cost:   func(b []byte) int64 { return int64(len(b)) },
//	})
//	sitemaps := cache.New[int64, *Sitemap](cache.Options[int64, *Sitemap]{
//	    Engine: eng,
//	    Cost:   (*Sitemap).Size,
//	})
//
// With GetOrLoad
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Limits: lru.Options{MaxTotalCost: 1024, TargetCost: 768},
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// Exporting metrics
//
//	m := prom.New(nil, "costlru", "pages", nil) // implements cache.Metrics and lru.Metrics
//	eng := lru.MustNew(lru.Options{MaxTotalCost: 1 << 30, TargetCost: 1 << 29, Metrics: m})
//	c := cache.New[string, []byte](cache.Options[string, []byte]{Engine: eng, Metrics: m})
package cache
