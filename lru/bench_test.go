package lru_test

import (
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/costlru/lru"
)

// Cycles through more entries than fit, so Adds past warm-up keep sweeping.
func BenchmarkEngine_AddSweep(b *testing.B) {
	e := lru.MustNew(lru.Options{MaxTotalCost: 100_000, TargetCost: 90_000})
	pool := make([]*item, 1<<17)
	for i := range pool {
		pool[i] = newItem("", 1)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Add(pool[i&(len(pool)-1)])
	}
}

func BenchmarkEngine_Touch(b *testing.B) {
	e := lru.MustNew(lru.Options{MaxTotalCost: 1 << 20})
	pool := make([]*item, 1<<16)
	for i := range pool {
		pool[i] = newItem("", 1)
		e.Add(pool[i])
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Touch(pool[i&(len(pool)-1)])
	}
}

func BenchmarkEngine_Parallel(b *testing.B) {
	e := lru.MustNew(lru.Options{MaxTotalCost: 50_000, TargetCost: 45_000})
	var misordered atomic.Int64

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		local := make([]*counted, 1<<12)
		for i := range local {
			local[i] = &counted{cost: 1, misordered: &misordered}
		}
		i := 0
		for pb.Next() {
			x := local[i&(len(local)-1)]
			if i&3 == 0 {
				e.Add(x)
			} else {
				e.Touch(x)
			}
			i++
		}
	})
}
