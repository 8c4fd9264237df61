package kthread

import (
	"container/list"
	"fmt"
)

// Lock is the concrete reference implementation of the SyncGlue consumed
// interface (C9, spec §4.8): a mutex whose acquire/release path drives
// the donation hooks spec §4.6 specifies. Real lock/semaphore primitives
// are explicitly out of core scope and live in a sibling module in the
// source system; this package still needs one real implementation to
// exercise and test donation end to end (scenario 3, spec §8), so Lock
// plays that role here the same way the teacher provides both a Website
// interface and a concrete SimpleWebsite (website.go) to have something
// runnable.
type Lock struct {
	sched             *Scheduler
	holder            *thread
	waiters           *list.List // *thread, ordered by effective priority desc, FIFO among ties
	maxWaiterPriority int
}

// NewLock creates a Lock bound to s. Locks are not safe to share across
// schedulers.
func (s *Scheduler) NewLock() *Lock {
	return &Lock{sched: s, waiters: list.New()}
}

func (l *Lock) String() string {
	return fmt.Sprintf("{held:%v waiters:%d maxWaiterPri:%d}", l.holder != nil, l.waiters.Len(), l.maxWaiterPriority)
}

// IsHeldBy reports whether tid currently holds l.
func (l *Lock) IsHeldBy(tid TID) bool {
	s := l.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	return l.holder != nil && l.holder.tid == tid
}

// Acquire is "on lock acquire attempt" through "on lock acquired" (spec
// §4.6): if the lock is free, take it immediately. Otherwise join the
// waiters queue in priority order, donate up the holder's wait chain,
// block, and return only once this thread has actually been granted the
// lock by a release.
func (l *Lock) Acquire(tid TID) {
	s := l.sched
	s.mu.Lock()
	kassert(!s.inInterrupt, "lock acquire from interrupt context")
	me := s.all[tid]
	kassert(me != nil, "lock acquire: no such thread %d", tid)

	if l.holder == nil {
		l.holder = me
		me.ownedLocks[l] = struct{}{}
		s.mu.Unlock()
		return
	}
	kassert(l.holder != me, "lock acquire: thread %d already holds this lock", tid)

	me.waitingOn = l
	me.waitElem = orderedInsert(l.waiters, me, readyBefore)
	l.recomputeMaxWaiterPriority()
	traceDonate("tid=%d waits on lock held by tid=%d", tid, l.holder.tid)
	s.donate(l.holder)

	me.status = StatusBlocked
	s.schedule()
	s.mu.Unlock()
}

// Release is "on lock release" (spec §4.6): hand the lock to the
// highest-priority waiter (if any), recompute this thread's own
// effective priority now that it no longer benefits from l's donation,
// and yield if the thread it just woke outranks it.
func (l *Lock) Release(tid TID) {
	s := l.sched
	s.mu.Lock()
	me := s.all[tid]
	kassert(me != nil, "lock release: no such thread %d", tid)
	kassert(l.holder == me, "lock release: thread %d does not hold this lock", tid)

	delete(me.ownedLocks, l)
	l.holder = nil

	var woken *thread
	if e := l.waiters.Front(); e != nil {
		woken = e.Value.(*thread)
		l.waiters.Remove(e)
		woken.waitingOn = nil
		woken.waitElem = nil
		l.holder = woken
		woken.ownedLocks[l] = struct{}{}
	}
	l.recomputeMaxWaiterPriority()

	s.refreshEffectiveLocked(me)

	if woken != nil {
		s.unblockLocked(woken.tid)
	}

	shouldYield := woken != nil && woken.effectivePriority > me.effectivePriority
	s.mu.Unlock()

	if shouldYield {
		s.Yield()
	}
}

// recomputeMaxWaiterPriority must be called with s.mu held. Waiters are
// kept ordered by effective priority descending, so the max is always
// at the front.
func (l *Lock) recomputeMaxWaiterPriority() {
	if e := l.waiters.Front(); e != nil {
		l.maxWaiterPriority = e.Value.(*thread).effectivePriority
	} else {
		l.maxWaiterPriority = 0
	}
}

// waitReinsert restores a lock's waiter order after t's effective
// priority changes while t is queued on l — the waiters-list analogue
// of readyReinsert — and refreshes l's cached maxWaiterPriority so
// whoever holds l sees the new value on its next refresh.
func (l *Lock) waitReinsert(t *thread) {
	if t.waitElem == nil {
		return
	}
	l.waiters.Remove(t.waitElem)
	t.waitElem = orderedInsert(l.waiters, t, readyBefore)
	l.recomputeMaxWaiterPriority()
}

// donate is the nested-donation walk of spec §4.6: raise holder's
// effective priority to reflect l's waiters, then follow holder's own
// waitingOn chain, bounded at DonationDepthLimit. holder's priority may
// rise as a result of this refresh; since it may itself be queued as a
// waiter further up the chain, its position in that queue and the
// queue's cached max waiter priority need to catch up before the walk
// continues, or the next holder refreshes against a stale value.
// Exceeding the depth bound is a silent no-op (spec §7), not an error —
// the chain is assumed acyclic by construction (Design Notes #4); a
// debug build may additionally assert that.
func (s *Scheduler) donate(holder *thread) {
	h := holder
	seen := make(map[*thread]bool, DonationDepthLimit)
	for depth := 0; h != nil && depth < DonationDepthLimit; depth++ {
		if debugDonationCycles && seen[h] {
			panic(fmt.Sprintf("kthread: donation cycle detected at thread %d", h.tid))
		}
		seen[h] = true

		s.refreshEffectiveLocked(h)
		next := h.waitingOn
		if next == nil {
			break
		}
		next.waitReinsert(h)
		h = next.holder
	}
}

// refreshEffectiveLocked is refresh_effective(t) (spec §4.6): recompute
// t's effective priority as the max of its base priority and the
// highest max_waiter_priority over its held locks (invariant 6), and
// reinsert it into the ready list if its position changed (invariant 4).
// Must be called with s.mu held.
func (s *Scheduler) refreshEffectiveLocked(t *thread) {
	best := t.basePriority
	for lk := range t.ownedLocks {
		if lk.maxWaiterPriority > best {
			best = lk.maxWaiterPriority
		}
	}
	if best == t.effectivePriority {
		return
	}
	t.effectivePriority = best
	if t.status == StatusReady {
		s.readyReinsert(t)
	}
}

// SetPriority is set_priority(new) (spec §4.6): a no-op under MLFQS.
// Otherwise updates the base priority; the effective priority only drops
// if no currently-held lock still demands a higher one (it stays raised,
// to fall on the next release, per invariant 6). Yields if this lowers
// the thread below the best ready thread.
func (s *Scheduler) SetPriority(tid TID, newPriority int) {
	s.mu.Lock()
	if !s.policy.AllowSetPriority() {
		s.mu.Unlock()
		return
	}
	kassert(newPriority >= PriMin && newPriority <= PriMax, "set_priority: priority %d out of range", newPriority)

	t := s.all[tid]
	kassert(t != nil, "set_priority: no such thread %d", tid)

	old := t.effectivePriority
	t.basePriority = newPriority
	s.refreshEffectiveLocked(t)

	lowered := t.effectivePriority < old
	outranked := lowered && s.readyHeadPriority() > t.effectivePriority
	s.mu.Unlock()

	if outranked {
		s.Yield()
	}
}

// GetPriority is get_priority() (spec §4.6, and the Open Question in §9
// resolved for "always returns the current effective priority" — true
// whether or not MLFQS is active, since under MLFQS base and effective
// track the same BSD-computed value except during a transient donation).
func (s *Scheduler) GetPriority(tid TID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.all[tid]
	kassert(t != nil, "get_priority: no such thread %d", tid)
	return t.effectivePriority
}
