package lru

// nilSlot marks an absent neighbor, head or tail.
const nilSlot int32 = -1

// slot is one arena cell. While occupied it holds the entry, its handle, the
// cost recorded for it by the last Add/Touch, and its neighbors in recency order
// (prev is toward head/MRU, next is toward tail/LRU).
type slot struct {
	entry  Entry
	handle *Handle
	cost   int64
	prev   int32
	next   int32
	gen    uint32
}

// arena is an intrusive doubly linked list whose links are slot indices.
// Freed slots are recycled; bumping the generation on every free makes stale
// handles fail the membership check instead of aliasing a new occupant.
type arena struct {
	slots []slot
	free  []int32
	head  int32 // MRU
	tail  int32 // LRU
	len   int
}

func newArena() arena {
	return arena{head: nilSlot, tail: nilSlot}
}

// alloc returns a free slot index, growing the arena if needed.
func (a *arena) alloc() int32 {
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		return i
	}
	a.slots = append(a.slots, slot{prev: nilSlot, next: nilSlot, gen: 1})
	return int32(len(a.slots) - 1)
}

// release clears slot i and puts it on the free list.
func (a *arena) release(i int32) {
	s := &a.slots[i]
	s.entry, s.handle = nil, nil
	s.cost = 0
	s.prev, s.next = nilSlot, nilSlot
	s.gen++
	if s.gen == 0 { // wrapped; zero is reserved for "not cached"
		s.gen = 1
	}
	a.free = append(a.free, i)
}

// pushFront links slot i as the new MRU in O(1).
func (a *arena) pushFront(i int32) {
	s := &a.slots[i]
	s.prev = nilSlot
	s.next = a.head
	if a.head != nilSlot {
		a.slots[a.head].prev = i
	}
	a.head = i
	if a.tail == nilSlot {
		a.tail = i
	}
	a.len++
}

// unlink detaches slot i from wherever it sits (head, tail or interior).
func (a *arena) unlink(i int32) {
	s := &a.slots[i]
	if s.prev != nilSlot {
		a.slots[s.prev].next = s.next
	} else {
		a.head = s.next
	}
	if s.next != nilSlot {
		a.slots[s.next].prev = s.prev
	} else {
		a.tail = s.prev
	}
	s.prev, s.next = nilSlot, nilSlot
	a.len--
}

// moveToFront promotes slot i to MRU in O(1).
func (a *arena) moveToFront(i int32) {
	if a.head == i {
		return
	}
	a.unlink(i)
	a.pushFront(i)
}
