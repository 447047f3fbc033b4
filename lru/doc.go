// Package lru implements a cost-bounded least-recently-used eviction engine
// that is independent of where the cached values live.
//
// Design
//
//   - Capability contract: anything implementing Entry (usually a struct that
//     embeds Link) can be cached. The engine asks an entry for its Cost and
//     tells it when it joins (OnAdded) or leaves (OnRemoved) the cache.
//
//   - Storage: the engine does not store values or keys. Consumers keep their
//     own index (a map, a tree, ...) and delete from it in OnRemoved.
//
//   - Recency list: an arena of slots linked by index (head is MRU, tail is
//     LRU). An entry's Handle holds its slot and the slot generation, so
//     membership is a constant-time check and a stale handle never aliases
//     a recycled slot.
//
//   - Capacity: MaxTotalCost is checked at the end of every Add. When it is
//     exceeded, a sweep evicts tail entries until the total drops below
//     TargetCost, so the next few inserts do not evict again. MaxEntryCost
//     refuses single entries that are too expensive.
//
//   - Changing costs: Cost is re-read on Touch and the difference is applied
//     to the total. An entry that grows past MaxEntryCost is dropped.
//
//   - Concurrency: one mutex per engine. Notifications (OnAdded, OnRemoved,
//     Options.OnEvict) are queued in order and delivered by one goroutine
//     at a time after the mutex is released, so callbacks may call back
//     into the same engine and each entry sees OnAdded before OnRemoved.
//
// Basic usage
//
//	type page struct {
//	    lru.Link
//	    url  string
//	    body []byte
//	}
//
//	func (p *page) Cost() int64 { return int64(len(p.body)) }
//	func (p *page) OnAdded()    {}
//	func (p *page) OnRemoved()  { delete(index, p.url) }
//
//	eng := lru.MustNew(lru.Options{
//	    MaxTotalCost: 64 << 20, // 64 MiB
//	    TargetCost:   48 << 20,
//	    MaxEntryCost: 1 << 20,
//	})
//	p := &page{url: u, body: b}
//	if eng.Add(p) {
//	    index[u] = p
//	}
//	...
//	eng.Touch(index[u]) // on every hit
//
// Package cache builds a ready-to-use key/value map on top of an Engine.
package lru
