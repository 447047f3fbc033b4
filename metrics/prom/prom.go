// Package prom exports engine and cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/costlru/cache"
	"github.com/IvanBrykalov/costlru/lru"
)

// Adapter implements lru.Metrics and cache.Metrics and exports Prometheus
// counters/gauges. One Adapter may be handed to an engine and to every cache
// built on it.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   *prometheus.CounterVec
	rejects  prometheus.Counter
	rejCost  prometheus.Counter
	reclaims prometheus.Counter
	sizeEnt  prometheus.Gauge
	sizeCost prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("hits_total", "Cache hits"),
		misses: counter("misses_total", "Cache misses"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Engine evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		rejects:  counter("rejections_total", "Entries refused for exceeding the per-entry cost limit"),
		rejCost:  counter("rejected_cost_total", "Summed cost of refused entries"),
		reclaims: counter("reclaims_total", "Forced memory reclamation passes"),
		sizeEnt:  gauge("size_entries", "Number of resident entries"),
		sizeCost: gauge("size_cost", "Total resident cost"),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.rejects, a.rejCost, a.reclaims, a.sizeEnt, a.sizeCost)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r lru.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Reject counts a refused entry and its cost.
func (a *Adapter) Reject(cost int64) {
	a.rejects.Inc()
	if cost > 0 {
		a.rejCost.Add(float64(cost))
	}
}

func (a *Adapter) Reclaim() { a.reclaims.Inc() }

// Size updates gauges for the number of entries and total cost.
func (a *Adapter) Size(entries int, cost int64) {
	a.sizeEnt.Set(float64(entries))
	a.sizeCost.Set(float64(cost))
}

// Compile-time checks.
var (
	_ cache.Metrics = (*Adapter)(nil)
	_ lru.Metrics   = (*Adapter)(nil)
)
