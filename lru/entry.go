package lru

// Entry is the capability contract a value must satisfy to be tracked by an
// Engine. The engine never looks at the payload; it only needs a cost, a
// place to keep its list handle, and two notifications.
//
// Implementations are usually pointers to a struct that embeds Link.
//
// For one entry, OnAdded and OnRemoved strictly alternate, starting with
// OnAdded, even when several goroutines drive the engine.
type Entry interface {
	// Cost reports the entry's weight toward capacity. It is read once per
	// engine operation (Add, Touch) and may change between operations.
	// Negative values are treated as zero.
	Cost() int64

	// Handle returns the engine-owned list handle stored in the entry.
	// Only the engine writes through this pointer.
	Handle() *Handle

	// OnAdded fires once when the entry becomes a member.
	OnAdded()

	// OnRemoved fires once when the entry stops being a member, whether by
	// Remove, an eviction sweep, an oversize Touch or Clear. The handle is
	// already cleared when it runs, so calling back into the engine for this
	// entry is a safe no-op.
	OnRemoved()
}

// Evictable is an optional extension of Entry. When the engine drops an
// entry on its own (sweep, oversize Touch, Clear) it calls OnEvicted with the
// reason just before OnRemoved. Explicit Remove does not call it.
type Evictable interface {
	OnEvicted(reason EvictReason)
}

// Handle addresses an entry's slot in the engine arena.
// The zero Handle means "not cached".
//
// A handle stays set until the owning engine removes the entry. An engine
// that is discarded while still holding entries leaves their handles set,
// and every other engine refuses them as foreign; call Clear on the old
// engine first to release its entries.
type Handle struct {
	owner uint64 // engine incarnation
	slot  uint32
	gen   uint32 // slot generation at insertion; never zero for members
}

// IsZero reports whether h refers to no slot.
func (h *Handle) IsZero() bool { return h == nil || h.gen == 0 }

func (h *Handle) reset() { *h = Handle{} }

// Link is embedded by entry types to satisfy the Handle part of Entry.
//
//	type doc struct {
//	    lru.Link
//	    body []byte
//	}
//
//	func (d *doc) Cost() int64 { return int64(len(d.body)) }
//	func (d *doc) OnAdded()    {}
//	func (d *doc) OnRemoved()  {}
type Link struct{ h Handle }

// Handle implements Entry.
func (l *Link) Handle() *Handle { return &l.h }
