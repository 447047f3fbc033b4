package cache

import (
	"context"
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/costlru/lru"
)

// Two caches with different key types share one byte budget. Values vary in
// size, so writes keep the engine sweeping across both caches' shards.
func BenchmarkCache_SharedByteBudget(b *testing.B) {
	eng := lru.MustNew(lru.Options{
		MaxTotalCost: 8 << 20,
		TargetCost:   6 << 20,
		MaxEntryCost: 64 << 10,
	})
	bytesCost := func(v []byte) int64 { return int64(len(v)) }
	pages := New[string, []byte](Options[string, []byte]{Engine: eng, Cost: bytesCost})
	blobs := New[uint64, []byte](Options[uint64, []byte]{Engine: eng, Cost: bytesCost})

	// A few shared buffers; the benchmark measures bookkeeping, not allocation.
	sizes := []int{256, 1 << 10, 4 << 10, 16 << 10, 80 << 10}
	vals := make([][]byte, len(sizes))
	for i, n := range sizes {
		vals[i] = make([]byte, n)
	}

	var seed int64
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			id := uint64(r.Intn(1 << 14))
			v := vals[r.Intn(len(vals))]
			switch op := r.Intn(10); {
			case op < 6:
				pages.Get("/p/" + strconv.FormatUint(id, 10))
				blobs.Get(id)
			case op < 8:
				pages.Set("/p/"+strconv.FormatUint(id, 10), v)
			default:
				blobs.Set(id, v) // 80 KiB values are refused
			}
		}
	})
	b.StopTimer()
	b.ReportMetric(float64(eng.Stats().Evictions)/float64(b.N), "evictions/op")
}

// GetOrLoad over a hot key set; misses go through the singleflight path.
func BenchmarkCache_GetOrLoad(b *testing.B) {
	c := New[int, string](Options[int, string]{
		Limits: lru.Options{MaxTotalCost: 4096, TargetCost: 3072},
		Loader: func(_ context.Context, k int) (string, error) {
			return strconv.Itoa(k), nil
		},
	})
	ctx := context.Background()

	var seed int64
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			if _, err := c.GetOrLoad(ctx, r.Intn(8192)); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
