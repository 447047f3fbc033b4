package lru

import (
	"log/slog"
)

// Unlimited disables the per-entry cost ceiling when used as MaxEntryCost.
// Any non-positive MaxEntryCost has the same effect.
const Unlimited int64 = 0

// EvictReason explains why the engine dropped an entry on its own.
type EvictReason int

const (
	// EvictCapacity: removed by the sweep after an Add (or Trim) pushed the
	// total cost over MaxTotalCost.
	EvictCapacity EvictReason = iota
	// EvictOversize: cost grew past MaxEntryCost while cached (seen on Touch).
	EvictOversize
	// EvictClear: removed by Clear.
	EvictClear
)

// String returns a stable lowercase name, suitable for metric labels.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictOversize:
		return "oversize"
	case EvictClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Metrics exposes engine-level observability hooks.
// Size is called under the engine lock; the other hooks run after it is
// released. Implementations must not call back into the engine.
type Metrics interface {
	Evict(reason EvictReason)
	Reject(cost int64)
	Reclaim()
	Size(entries int, cost int64)
}

// Options configures an Engine. Limits are fixed at construction.
// Defaults applied in New():
//   - nil Metrics => NoopMetrics
//   - nil Logger  => slog.Default()
//   - nil Reclaim => runtime.GC
//   - empty Name  => random UUID
type Options struct {
	// MaxTotalCost is the hard ceiling checked at the end of every Add.
	MaxTotalCost int64
	// TargetCost is the soft floor: a sweep evicts until the total drops
	// below it. Keep it <= MaxTotalCost to get hysteresis.
	TargetCost int64
	// MaxEntryCost rejects (or drops on Touch) single entries costing more.
	// Unlimited (or any value <= 0) disables the check.
	MaxEntryCost int64

	// ForceReclaim asks for a memory reclamation pass after every sweep that
	// evicted something and after Clear. It is a hint only.
	ForceReclaim bool
	// Reclaim overrides the reclamation pass (tests, custom pools).
	Reclaim func()

	// Name labels log records; useful when several engines share a process.
	Name string

	// OnEvict is called for entries the engine dropped on its own
	// (not for explicit Remove), after the entry's own OnRemoved.
	OnEvict func(e Entry, reason EvictReason)
	Metrics Metrics
	Logger  *slog.Logger
}
