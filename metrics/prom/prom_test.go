package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/costlru/cache"
	"github.com/IvanBrykalov/costlru/lru"
)

func TestAdapter_WiredIntoEngineAndCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "costlru", "test", prometheus.Labels{"instance": "t"})

	eng, err := lru.New(lru.Options{
		MaxTotalCost: 10,
		TargetCost:   5,
		MaxEntryCost: 4,
		Metrics:      m,
		ForceReclaim: true,
		Reclaim:      func() {},
	})
	require.NoError(t, err)

	c := cache.New[string, string](cache.Options[string, string]{
		Engine:  eng,
		Shards:  1,
		Cost:    func(s string) int64 { return int64(len(s)) },
		Metrics: m,
	})

	for _, k := range []string{"a", "b", "c"} {
		require.True(t, c.Set(k, "xxxx"))
	}
	// 12 > 10: a and b go (total 4).
	assert.False(t, c.Set("big", "xxxxxxx"))
	c.Get("c")
	c.Get("a")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejects))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.rejCost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reclaims))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sizeEnt))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.sizeCost))

	eng.Clear()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("clear")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sizeEnt))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reclaims))
}

func TestAdapter_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "costlru", "dup", nil)
	assert.Panics(t, func() { New(reg, "costlru", "dup", nil) })
}
