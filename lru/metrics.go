package lru

// NoopMetrics is the default Metrics implementation; it does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Evict(EvictReason)            {}
func (NoopMetrics) Reject(int64)                 {}
func (NoopMetrics) Reclaim()                     {}
func (NoopMetrics) Size(entries int, cost int64) {}

var _ Metrics = NoopMetrics{}
