// Package arena implements the small-integer-handle thread store that
// spec.md's Design Notes #2 recommends as the idiomatic-Go replacement
// for one-thread-per-page storage: a capacity-bounded slice addressed by
// handle, instead of a page allocator handing out page-aligned memory.
//
// This generalizes the teacher's flat registry idiom — map[Tmid]*Machine
// in world.go, map[Tid]*Machine in machine.go — into something that can
// actually run out, the way a fixed page pool can, so Create() has a real
// resource-exhaustion path to report.
package arena

import "sync"

// Handle addresses a slot in an Arena. Handles are never reused for a
// different occupant while the original occupant is still alive; once
// freed, a handle may be recycled for a new occupant.
type Handle int

// Arena is a fixed-capacity pool of T, addressed by Handle. It is the Go
// stand-in for the page allocator: Alloc is the "give me a zeroed page"
// call, Free is freeing the page back to the pool.
type Arena[T any] struct {
	mu       sync.Mutex
	slots    []*T
	occupied []bool
	freeList []Handle
}

// New creates an Arena with room for capacity occupants.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots:    make([]*T, capacity),
		occupied: make([]bool, capacity),
	}
}

// Alloc reserves a slot and returns its handle and a pointer to the
// zero-valued occupant. ok is false if the arena is at capacity — the Go
// analogue of the page allocator returning null.
func (a *Arena[T]) Alloc() (Handle, *T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.freeList); n > 0 {
		h := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		var zero T
		a.slots[h] = &zero
		a.occupied[h] = true
		return h, a.slots[h], true
	}

	for i, occ := range a.occupied {
		if !occ {
			var zero T
			a.slots[i] = &zero
			a.occupied[i] = true
			return Handle(i), a.slots[i], true
		}
	}

	return 0, nil, false
}

// Free releases a handle back to the arena. Freeing a handle that is not
// currently occupied is a caller bug and panics, matching the kernel's
// own fatal-assertion policy for contract violations rather than
// silently ignoring a double free.
func (a *Arena[T]) Free(h Handle) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if int(h) < 0 || int(h) >= len(a.occupied) || !a.occupied[h] {
		panic("arena: free of unoccupied handle")
	}
	a.occupied[h] = false
	a.slots[h] = nil
	a.freeList = append(a.freeList, h)
}

// Get returns the occupant at h, or nil if the slot is free.
func (a *Arena[T]) Get(h Handle) *T {
	a.mu.Lock()
	defer a.mu.Unlock()
	if int(h) < 0 || int(h) >= len(a.occupied) || !a.occupied[h] {
		return nil
	}
	return a.slots[h]
}

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, occ := range a.occupied {
		if occ {
			n++
		}
	}
	return n
}

// Cap returns the arena's total capacity.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}
