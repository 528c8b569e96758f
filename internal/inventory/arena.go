package inventory

import "fmt"

// key is a generation-tagged slot index. A zero generation never names a
// live slot, so the zero key is always stale.
type key struct {
	index uint32
	gen   uint32
}

func (k key) String() string {
	return fmt.Sprintf("%dv%d", k.index, k.gen)
}

func (k key) less(o key) bool {
	if k.index != o.index {
		return k.index < o.index
	}
	return k.gen < o.gen
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// arena is a dense slot vector with a free list. Removing a value bumps the
// slot generation so keys handed out earlier stop resolving.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (a *arena[T]) insert(v T) key {
	a.count++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.live = true
		return key{index: idx, gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{value: v, gen: 1, live: true})
	return key{index: uint32(len(a.slots) - 1), gen: 1}
}

func (a *arena[T]) get(k key) (*T, bool) {
	if int(k.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[k.index]
	if !s.live || s.gen != k.gen {
		return nil, false
	}
	return &s.value, true
}

func (a *arena[T]) remove(k key) (T, bool) {
	var zero T
	if _, ok := a.get(k); !ok {
		return zero, false
	}
	s := &a.slots[k.index]
	v := s.value
	s.value = zero
	s.live = false
	s.gen++
	a.free = append(a.free, k.index)
	a.count--
	return v, true
}

// keys returns the live keys in slot order.
func (a *arena[T]) keys() []key {
	out := make([]key, 0, a.count)
	for i := range a.slots {
		if a.slots[i].live {
			out = append(out, key{index: uint32(i), gen: a.slots[i].gen})
		}
	}
	return out
}

func (a *arena[T]) len() int {
	return a.count
}
