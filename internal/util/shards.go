package util

import "runtime"

// MaxShards caps the number of index shards.
const MaxShards = 256

// ShardCount normalizes a requested shard count: n <= 0 picks
// nextPow2(2*GOMAXPROCS); anything else is rounded up to a power of two.
// The result is always in [1, MaxShards].
func ShardCount(n int) int {
	if n <= 0 {
		p := runtime.GOMAXPROCS(0)
		if p < 1 {
			p = 1
		}
		n = 2 * p
	}
	c := int(NextPow2(uint64(n)))
	if c > MaxShards {
		c = MaxShards
	}
	return c
}

// ShardIndex maps a hash to a shard. shards must be a power of two.
func ShardIndex(hash uint64, shards int) int {
	return int(hash & uint64(shards-1))
}

// NextPow2 returns the smallest power of two >= x (1 for x == 0),
// clamped to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	if x > 1<<63 {
		return 1 << 63
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x + 1
}
