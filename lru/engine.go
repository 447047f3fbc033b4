package lru

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrInvalidOptions is returned by New for negative limits.
	ErrInvalidOptions = errors.New("lru: invalid options")
	// ErrCorrupt is returned by Verify when the list breaks an invariant.
	ErrCorrupt = errors.New("lru: list corrupt")
)

// incarnations gives every engine (and every engine after Clear) a distinct
// owner id so handles from elsewhere never pass the membership check.
var incarnations atomic.Uint64

// Engine is a cost-bounded LRU eviction engine. It keeps recency order and
// cost totals for entries stored elsewhere; consumers own the values and the
// key index. All methods are safe for concurrent use.
//
// Add, Touch and Remove are O(1); a sweep is O(1) per evicted entry.
//
// Notifications (OnAdded, OnRemoved, Options.OnEvict, most Metrics hooks)
// run without the lock held, in the order the engine produced them. A call
// normally delivers its own notifications before it returns; if another
// goroutine is already delivering, or the call was made from inside a
// callback, that delivery picks them up instead.
type Engine struct {
	// ---- guarded by mu ----
	mu         sync.Mutex
	id         uint64
	list       arena
	totalCost  int64
	evictions  uint64
	rejections uint64

	// outbox holds batches awaiting delivery, oldest first. While delivering
	// is set exactly one goroutine drains it; everyone else only appends.
	outbox     []batch
	delivering bool

	reclaims atomic.Uint64

	opt Options
	log *slog.Logger
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Entries    int
	TotalCost  int64
	Evictions  uint64 // automatic removals, including Clear
	Rejections uint64 // Add refused for MaxEntryCost
	Reclaims   uint64
}

// New constructs an engine. It fails only on negative limits.
func New(opt Options) (*Engine, error) {
	if opt.MaxTotalCost < 0 {
		return nil, fmt.Errorf("%w: MaxTotalCost %d is negative", ErrInvalidOptions, opt.MaxTotalCost)
	}
	if opt.TargetCost < 0 {
		return nil, fmt.Errorf("%w: TargetCost %d is negative", ErrInvalidOptions, opt.TargetCost)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Reclaim == nil {
		opt.Reclaim = runtime.GC
	}
	if opt.Name == "" {
		opt.Name = uuid.NewString()
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("engine", opt.Name))
	if opt.TargetCost > opt.MaxTotalCost {
		logger.Warn("target cost is above max total cost",
			slog.Int64("target_cost", opt.TargetCost),
			slog.Int64("max_total_cost", opt.MaxTotalCost))
	}

	return &Engine{
		id:   incarnations.Add(1),
		list: newArena(),
		opt:  opt,
		log:  logger,
	}, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opt Options) *Engine {
	e, err := New(opt)
	if err != nil {
		panic(err)
	}
	return e
}

// Add makes x the most recently used entry.
//
// It returns false for a nil entry, for an entry costing more than
// MaxEntryCost, and for an entry cached by another engine. An entry that is
// already a member is touched instead, and is removed (Add returns false)
// if its cost has grown past MaxEntryCost. When the total then exceeds
// MaxTotalCost, tail entries are evicted until it drops below TargetCost.
func (e *Engine) Add(x Entry) bool {
	if x == nil {
		return false
	}
	h := x.Handle()
	if h == nil {
		return false
	}
	cost := costOf(x)

	var b batch
	e.mu.Lock()
	ok := e.addLocked(x, h, cost, &b)
	e.sizeLocked()
	e.flushLocked(&b)
	return ok
}

// Touch promotes a member to most recently used and refreshes its cost.
// It returns false if x is not a member, or if its cost now exceeds
// MaxEntryCost, in which case x is removed.
func (e *Engine) Touch(x Entry) bool {
	if x == nil {
		return false
	}
	h := x.Handle()
	if h == nil {
		return false
	}
	cost := costOf(x)

	var b batch
	e.mu.Lock()
	if !e.memberLocked(h) {
		e.mu.Unlock()
		return false
	}
	ok := e.touchLocked(h, cost, &b)
	e.sizeLocked()
	e.flushLocked(&b)
	return ok
}

// Remove drops x and returns it, or returns nil if x is not a member.
// Removing the same entry twice is a no-op the second time.
func (e *Engine) Remove(x Entry) Entry {
	if x == nil {
		return nil
	}
	h := x.Handle()
	if h == nil {
		return nil
	}

	var b batch
	e.mu.Lock()
	if !e.memberLocked(h) {
		e.mu.Unlock()
		return nil
	}
	e.removeLocked(int32(h.slot), 0, false, &b)
	e.sizeLocked()
	e.flushLocked(&b)
	return x
}

// Clear removes every entry, LRU first, and resets the totals.
// Every removed entry receives OnRemoved exactly once.
func (e *Engine) Clear() {
	var b batch
	e.mu.Lock()
	for e.list.tail != nilSlot {
		e.removeLocked(e.list.tail, EvictClear, true, &b)
	}
	b.cleared = true
	// Drop the arena so a burst of entries does not pin memory forever.
	e.list = newArena()
	e.totalCost = 0
	e.id = incarnations.Add(1)
	e.sizeLocked()
	e.flushLocked(&b)
}

// Trim runs a sweep if the total cost is above MaxTotalCost (for instance
// after Touch grew an entry) and returns how many entries it evicted.
func (e *Engine) Trim() int {
	var b batch
	e.mu.Lock()
	if e.totalCost > e.opt.MaxTotalCost {
		e.sweepLocked(&b)
	}
	e.sizeLocked()
	e.flushLocked(&b)
	return b.evicted
}

// -------------------- internals (mu held) --------------------

func (e *Engine) addLocked(x Entry, h *Handle, cost int64, b *batch) bool {
	if e.memberLocked(h) {
		return e.touchLocked(h, cost, b)
	}
	if !h.IsZero() {
		// Linked into some other engine; adopting it would orphan that slot.
		b.foreign = true
		return false
	}
	if e.oversize(cost) {
		e.rejections++
		b.rejected, b.rejectCost = true, cost
		return false
	}

	i := e.list.alloc()
	s := &e.list.slots[i]
	s.entry, s.handle, s.cost = x, h, cost
	*h = Handle{owner: e.id, slot: uint32(i), gen: s.gen}
	e.list.pushFront(i)
	e.totalCost += cost
	b.notices = append(b.notices, notice{entry: x, added: true})

	if e.totalCost > e.opt.MaxTotalCost {
		e.sweepLocked(b)
	}
	return true
}

func (e *Engine) touchLocked(h *Handle, cost int64, b *batch) bool {
	i := int32(h.slot)
	if e.oversize(cost) {
		e.removeLocked(i, EvictOversize, true, b)
		return false
	}
	s := &e.list.slots[i]
	e.totalCost += cost - s.cost
	s.cost = cost
	e.list.moveToFront(i)
	return true
}

// removeLocked unlinks slot i, clears the entry's handle and queues its
// OnRemoved. The handle is cleared first so reentrant calls see a non-member.
func (e *Engine) removeLocked(i int32, reason EvictReason, evicted bool, b *batch) {
	s := &e.list.slots[i]
	x, h := s.entry, s.handle
	e.list.unlink(i)
	e.totalCost -= s.cost
	h.reset()
	e.list.release(i)

	if evicted {
		e.evictions++
		b.evicted++
	}
	b.notices = append(b.notices, notice{entry: x, reason: reason, evicted: evicted})
}

// sweepLocked evicts from the tail until totalCost < TargetCost.
func (e *Engine) sweepLocked(b *batch) {
	before := e.totalCost
	n := b.evicted
	for e.list.tail != nilSlot && e.totalCost >= e.opt.TargetCost {
		e.removeLocked(e.list.tail, EvictCapacity, true, b)
	}
	if b.evicted > n {
		b.swept = true
		b.costBefore, b.costAfter = before, e.totalCost
	}
}

func (e *Engine) memberLocked(h *Handle) bool {
	if h.IsZero() || h.owner != e.id || int(h.slot) >= len(e.list.slots) {
		return false
	}
	s := &e.list.slots[h.slot]
	return s.gen == h.gen && s.handle == h
}

func (e *Engine) oversize(cost int64) bool {
	return e.opt.MaxEntryCost > 0 && cost > e.opt.MaxEntryCost
}

// sizeLocked reports the gauge under the lock so concurrent calls cannot
// publish sizes out of order.
func (e *Engine) sizeLocked() {
	e.opt.Metrics.Size(e.list.len, e.totalCost)
}

func costOf(x Entry) int64 {
	c := x.Cost()
	if c < 0 {
		return 0
	}
	return c
}

// -------------------- delivery (mu released) --------------------

// flushLocked queues b and releases mu. If no delivery is running it becomes
// the deliverer and drains the outbox until it is empty, so batches reach
// callbacks in the order they were built.
func (e *Engine) flushLocked(b *batch) {
	if len(b.notices) > 0 || b.rejected || b.foreign {
		e.outbox = append(e.outbox, *b)
	}
	if e.delivering {
		e.mu.Unlock()
		return
	}
	e.delivering = true
	defer func() {
		if r := recover(); r != nil {
			// A callback panicked: hand delivery back so the engine keeps
			// working, then let the panic continue.
			e.mu.Lock()
			e.delivering = false
			e.mu.Unlock()
			panic(r)
		}
	}()
	for len(e.outbox) > 0 {
		q := e.outbox
		e.outbox = nil
		e.mu.Unlock()
		for i := range q {
			e.deliver(&q[i])
		}
		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

type notice struct {
	entry   Entry
	reason  EvictReason
	added   bool
	evicted bool
}

// batch collects the side effects of one public call so they can run after
// the lock is released.
type batch struct {
	notices []notice
	evicted int

	swept      bool // a capacity sweep evicted something
	cleared    bool
	costBefore int64
	costAfter  int64

	rejected   bool
	rejectCost int64
	foreign    bool
}

func (e *Engine) deliver(b *batch) {
	m := e.opt.Metrics
	if b.rejected {
		m.Reject(b.rejectCost)
		e.log.Debug("entry rejected: cost above per-entry limit",
			slog.Int64("cost", b.rejectCost),
			slog.Int64("max_entry_cost", e.opt.MaxEntryCost))
	}
	if b.foreign {
		e.log.Debug("entry rejected: already cached by another engine")
	}
	for _, n := range b.notices {
		if n.added {
			n.entry.OnAdded()
			continue
		}
		if n.evicted {
			if ev, ok := n.entry.(Evictable); ok {
				ev.OnEvicted(n.reason)
			}
		}
		n.entry.OnRemoved()
		if n.evicted {
			m.Evict(n.reason)
			if cb := e.opt.OnEvict; cb != nil {
				cb(n.entry, n.reason)
			}
		}
	}
	if b.swept {
		e.log.Debug("sweep",
			slog.Int("evicted", b.evicted),
			slog.Int64("cost_before", b.costBefore),
			slog.Int64("cost_after", b.costAfter))
	}
	if (b.swept || (b.cleared && b.evicted > 0)) && e.opt.ForceReclaim {
		e.opt.Reclaim()
		e.reclaims.Add(1)
		m.Reclaim()
		e.log.Debug("reclaim requested")
	}
}

// -------------------- diagnostics --------------------

// Len returns the number of cached entries.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list.len
}

// TotalCost returns the sum of the recorded costs of all cached entries.
func (e *Engine) TotalCost() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalCost
}

func (e *Engine) MaxTotalCost() int64 { return e.opt.MaxTotalCost }
func (e *Engine) TargetCost() int64   { return e.opt.TargetCost }
func (e *Engine) MaxEntryCost() int64 { return e.opt.MaxEntryCost }
func (e *Engine) ForceReclaim() bool  { return e.opt.ForceReclaim }
func (e *Engine) Name() string        { return e.opt.Name }

// Contains reports whether x is currently cached, without promoting it.
func (e *Engine) Contains(x Entry) bool {
	if x == nil {
		return false
	}
	h := x.Handle()
	if h == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memberLocked(h)
}

// Newest returns the most recently used entry, or nil.
func (e *Engine) Newest() Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.list.head == nilSlot {
		return nil
	}
	return e.list.slots[e.list.head].entry
}

// Oldest returns the least recently used entry (next to be evicted), or nil.
func (e *Engine) Oldest() Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.list.tail == nilSlot {
		return nil
	}
	return e.list.slots[e.list.tail].entry
}

// Snapshot returns the cached entries from most to least recently used.
func (e *Engine) Snapshot() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Entry, 0, e.list.len)
	for i := e.list.head; i != nilSlot; i = e.list.slots[i].next {
		out = append(out, e.list.slots[i].entry)
	}
	return out
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Entries:    e.list.len,
		TotalCost:  e.totalCost,
		Evictions:  e.evictions,
		Rejections: e.rejections,
		Reclaims:   e.reclaims.Load(),
	}
}

// String renders counts and limits for logs and debug pages.
func (e *Engine) String() string {
	st := e.Stats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "lru.Engine(%s) entries=%d cost=%d", e.opt.Name, st.Entries, st.TotalCost)
	fmt.Fprintf(&sb, " max=%d target=%d", e.opt.MaxTotalCost, e.opt.TargetCost)
	if e.opt.MaxEntryCost > 0 {
		fmt.Fprintf(&sb, " max_entry=%d", e.opt.MaxEntryCost)
	} else {
		sb.WriteString(" max_entry=unlimited")
	}
	fmt.Fprintf(&sb, " evictions=%d rejections=%d reclaims=%d force_reclaim=%t",
		st.Evictions, st.Rejections, st.Reclaims, e.opt.ForceReclaim)
	return sb.String()
}

// Verify walks the list in both directions and checks the count, cost and
// handle invariants. It is meant for tests and debug endpoints.
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := &e.list
	if (l.len == 0) != (l.head == nilSlot) || (l.head == nilSlot) != (l.tail == nilSlot) {
		return fmt.Errorf("%w: len=%d head=%d tail=%d", ErrCorrupt, l.len, l.head, l.tail)
	}

	var (
		steps int
		sum   int64
		last  = nilSlot
	)
	for i := l.head; i != nilSlot; i = l.slots[i].next {
		if steps > l.len {
			return fmt.Errorf("%w: forward walk exceeds %d entries", ErrCorrupt, l.len)
		}
		s := &l.slots[i]
		if s.prev != last {
			return fmt.Errorf("%w: slot %d prev=%d, want %d", ErrCorrupt, i, s.prev, last)
		}
		if s.handle == nil || s.handle.owner != e.id || s.handle.slot != uint32(i) || s.handle.gen != s.gen {
			return fmt.Errorf("%w: slot %d handle mismatch", ErrCorrupt, i)
		}
		sum += s.cost
		last = i
		steps++
	}
	if steps != l.len || last != l.tail {
		return fmt.Errorf("%w: forward walk %d entries ending at %d, want %d ending at %d",
			ErrCorrupt, steps, last, l.len, l.tail)
	}
	if sum != e.totalCost {
		return fmt.Errorf("%w: cost sum %d, total %d", ErrCorrupt, sum, e.totalCost)
	}

	steps = 0
	for i := l.tail; i != nilSlot; i = l.slots[i].prev {
		if steps > l.len {
			return fmt.Errorf("%w: reverse walk exceeds %d entries", ErrCorrupt, l.len)
		}
		last = i
		steps++
	}
	if steps != l.len || (l.len > 0 && last != l.head) {
		return fmt.Errorf("%w: reverse walk %d entries, want %d", ErrCorrupt, steps, l.len)
	}
	return nil
}
