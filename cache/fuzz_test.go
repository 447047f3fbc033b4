package cache

import (
	"strings"
	"testing"

	"github.com/IvanBrykalov/costlru/lru"
)

// Fuzz basic Set/Get/Remove semantics under arbitrary string inputs.
// Lengths are capped to keep memory bounded during fuzzing.
func FuzzCache_SetGetRemove(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string, string](Options[string, string]{
			Limits: lru.Options{MaxTotalCost: 1 << 16, TargetCost: 1 << 15},
			Cost:   func(s string) int64 { return int64(len(s)) },
		})
		t.Cleanup(func() { _ = c.Close() })

		if !c.Set(k, v) {
			t.Fatalf("Set refused within budget")
		}
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}
		if c.Cost() != int64(len(v)) {
			t.Fatalf("cost %d, want %d", c.Cost(), len(v))
		}

		if c.Add(k, "other") {
			t.Fatalf("Add duplicate returned true")
		}
		if got2, ok := c.Get(k); !ok || got2 != v {
			t.Fatalf("after duplicate Add: want %q, got %q ok=%v", v, got2, ok)
		}

		if !c.Remove(k) {
			t.Fatalf("Remove must return true")
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Remove")
		}
		if c.Cost() != 0 || c.Len() != 0 {
			t.Fatalf("cache not empty after Remove: len=%d cost=%d", c.Len(), c.Cost())
		}

		if !c.Add(k, v) {
			t.Fatalf("Add after Remove must return true")
		}
	})
}
