package lru_test

import (
	"testing"

	"github.com/IvanBrykalov/costlru/lru"
)

// Fuzz arbitrary operation scripts. Every byte pair selects an operation and
// an entry; after each step the list must pass Verify.
func FuzzEngine_Ops(f *testing.F) {
	f.Add([]byte{0, 1, 0, 2, 0, 3, 1, 1, 2, 2})
	f.Add([]byte{0, 0, 0, 0, 3, 0, 0, 7})
	f.Add([]byte{4, 9, 0, 9, 2, 9, 0, 9})

	f.Fuzz(func(t *testing.T, script []byte) {
		const limit = 1 << 12
		if len(script) > limit {
			script = script[:limit]
		}

		e := lru.MustNew(lru.Options{MaxTotalCost: 40, TargetCost: 25, MaxEntryCost: 12})
		pool := make([]*item, 16)
		for i := range pool {
			pool[i] = newItem(string(rune('a'+i)), int64(i))
		}

		for i := 0; i+1 < len(script); i += 2 {
			op, arg := script[i]%6, script[i+1]
			x := pool[int(arg)%len(pool)]
			switch op {
			case 0:
				e.Add(x)
			case 1:
				e.Touch(x)
			case 2:
				e.Remove(x)
			case 3:
				x.cost = int64(arg % 16)
				e.Touch(x)
			case 4:
				e.Trim()
			case 5:
				if arg%8 == 0 {
					e.Clear()
				}
			}
			if err := e.Verify(); err != nil {
				t.Fatalf("step %d (op %d): %v", i/2, op, err)
			}
		}

		for _, x := range pool {
			if x.removed > x.added || x.added-x.removed > 1 {
				t.Fatalf("%s: added=%d removed=%d", x.name, x.added, x.removed)
			}
		}
	})
}
