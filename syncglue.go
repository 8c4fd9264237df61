package kthread

// syncglue.go is C9: the surface this package exposes for an external
// lock/semaphore module to consume (spec §4.8). Lock (priority.go) is
// this package's own reference implementation, built directly against
// the unexported thread type for simplicity; InsertWaiterOrdered,
// Donate, and RefreshEffective are the same primitives exposed in a
// form a sibling package — one that can only see TIDs, not *thread —
// could use to build its own synchronization primitive that still
// participates correctly in donation.

// Donate is the exported donate(to) hook (spec §6): walks the nested
// donation chain starting at holder, exactly as Lock.Acquire does
// internally. An external lock module calls this after registering a
// new waiter and updating its own max-waiter-priority tracking, so the
// holder (and whatever it's itself waiting on) picks up the donation.
func (s *Scheduler) Donate(holder TID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.all[holder]
	kassert(h != nil, "donate: no such thread %d", holder)
	s.donate(h)
}

// RefreshEffective is the exported refresh_effective(t) hook (spec §6):
// recomputes t's effective priority as the max of its base priority and
// whatever donation its held locks currently demand, reinserting it
// into the ready list if its position changes.
func (s *Scheduler) RefreshEffective(tid TID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.all[tid]
	kassert(t != nil, "refresh_effective: no such thread %d", tid)
	s.refreshEffectiveLocked(t)
}

// EffectivePriority returns tid's current effective priority without the
// rest of the ThreadInfo snapshot — the one fact an external waiter
// queue needs to keep itself ordered.
func (s *Scheduler) EffectivePriority(tid TID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.all[tid]
	kassert(t != nil, "effective_priority: no such thread %d", tid)
	return t.effectivePriority
}

// InsertWaiterOrdered is the "ordered waiter-insertion helper" spec
// §4.8 requires the core to expose: insert tid into waiters so the
// result stays ordered by descending priorityOf, FIFO among ties. It's a
// free function rather than a Scheduler method because ordering a
// waiter list needs no scheduler state beyond a priority lookup — the
// same shape as runqueue.go's orderedInsert, specialized to a plain
// []TID instead of a container/list of *thread so a lock/semaphore
// module outside this package can use it without seeing the unexported
// thread type.
func InsertWaiterOrdered(waiters []TID, tid TID, priorityOf func(TID) int) []TID {
	pri := priorityOf(tid)
	for i, w := range waiters {
		if pri > priorityOf(w) {
			out := make([]TID, 0, len(waiters)+1)
			out = append(out, waiters[:i]...)
			out = append(out, tid)
			out = append(out, waiters[i:]...)
			return out
		}
	}
	return append(waiters, tid)
}
