package cache

import "context"

// Cache is a key/value cache whose capacity is enforced by an lru.Engine.
// All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity is O(1): a map lookup under a shard lock plus constant
// time list work inside the engine.
type Cache[K comparable, V any] interface {
	// Add inserts k→v only if k is not present.
	// Returns false if the key exists or the engine refuses the entry.
	Add(k K, v V) bool

	// Set inserts or replaces k→v and marks it most recently used.
	// Returns false if the engine refuses the entry (its cost is above the
	// per-entry limit); the key is then absent.
	Set(k K, v V) bool

	// Get returns the value for k and promotes it on hit.
	Get(k K) (V, bool)

	// Peek returns the value for k without promoting it.
	Peek(k K) (V, bool)

	// Contains reports whether k is present, without promoting it.
	Contains(k K) bool

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Keys returns the resident keys in no particular order.
	Keys() []K

	// Len returns the number of resident entries.
	Len() int

	// Cost returns the summed cost of this cache's resident entries.
	Cost() int64

	// Stats returns hit/miss counters and residency totals.
	Stats() Stats

	// Clear removes every entry of this cache from the engine. Entries other
	// consumers keep in a shared engine are untouched.
	Clear()

	// Close marks the cache closed; later calls are ignored.
	Close() error

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced.
	// Returns ErrNoLoader if no Loader was configured.
	GetOrLoad(ctx context.Context, k K) (V, error)
}
