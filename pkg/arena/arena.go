// Package arena provides generational slot storage. An Arena hands out
// stable Handles that combine a slot index with a generation counter:
// removing an entry bumps the slot's generation, so a handle captured
// before the removal fails lookups cleanly instead of aliasing whatever
// value later reuses the slot.
package arena

import "fmt"

// Handle identifies an entry in an Arena. The zero Handle is never valid
// (generations start at 1), so it doubles as an "absent" marker.
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsNil reports whether h is the zero (absent) handle.
func (h Handle) IsNil() bool {
	return h == Handle{}
}

func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", h.Index, h.Gen)
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Arena is generational slot storage for values of type T. The zero value
// is not usable; call New.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32 // indices of dead slots, reused LIFO
	live  int
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// NewWithCapacity returns an empty arena with room for n entries.
func NewWithCapacity[T any](n int) *Arena[T] {
	return &Arena[T]{slots: make([]slot[T], 0, n)}
}

// Insert stores v and returns its handle. Slots freed by Remove are reused,
// with a generation that invalidates all prior handles to the slot.
func (a *Arena[T]) Insert(v T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.live = true // gen was already bumped by Remove
		a.live++
		return Handle{Index: idx, Gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{value: v, gen: 1, live: true})
	a.live++
	return Handle{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get returns a pointer to the value for h, or (nil, false) if h is stale,
// nil, or was never issued by this arena.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.Index]
	if !s.live || s.gen != h.Gen {
		return nil, false
	}
	return &s.value, true
}

// Contains reports whether h refers to a live entry.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove deletes the entry for h and returns its value. The slot becomes
// available for reuse; h and any copies of it are stale from now on.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	if int(h.Index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[h.Index]
	if !s.live || s.gen != h.Gen {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.live = false
	s.gen++
	a.free = append(a.free, h.Index)
	a.live--
	return v, true
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	return a.live
}

// ForEach calls fn for every live entry in slot order. Returning false from
// fn stops the iteration. Slot order coincides with insertion order until
// slots are recycled; callers must not depend on it.
func (a *Arena[T]) ForEach(fn func(Handle, *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: s.gen}, &s.value) {
			return
		}
	}
}

// Handles returns the handles of all live entries in slot order.
func (a *Arena[T]) Handles() []Handle {
	hs := make([]Handle, 0, a.live)
	a.ForEach(func(h Handle, _ *T) bool {
		hs = append(hs, h)
		return true
	})
	return hs
}
