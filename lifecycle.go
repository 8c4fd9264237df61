package kthread

import "github.com/markphelps/optional"

// CreateOptions configures a new thread beyond the bare name/priority/
// function triple spec §6 lists for create(). Nice is optional —
// absent means "inherit the creator's nice" under MLFQS (spec §4.4),
// the same way the teacher's constructors take a handful of required
// positional args and leave the rest at package defaults. optional.Int's
// zero value is "not present", so the common case (CreateOptions{}) does
// the right thing without callers writing a sentinel.
type CreateOptions struct {
	Nice optional.Int
}

// Create is create() (spec §4.4 / §6): allocate a thread, initialize it,
// make it READY, and — if it outranks the caller — yield so it gets a
// chance to run before Create returns (scenario 6). Returns
// ErrNoFreeThreads if the arena is at capacity; no partial state is
// published in that case (spec §7).
func (s *Scheduler) Create(name string, priority int, fn func(aux any), aux any, opts CreateOptions) (TID, error) {
	kassert(priority >= PriMin && priority <= PriMax, "create: priority %d out of range", priority)

	tid := s.allocTID()

	s.mu.Lock()
	h, slot, ok := s.arena.Alloc()
	if !ok {
		s.mu.Unlock()
		return 0, ErrNoFreeThreads
	}

	*slot = *newThread(tid, name, priority)
	slot.handle = h
	slot.fn = fn
	slot.aux = aux

	if s.cfg.Policy == PolicyMLFQS {
		creator := s.current
		nice := creator.nice
		if opts.Nice.Present() {
			nice = clamp(opts.Nice.MustGet(), NiceMin, NiceMax)
		}
		slot.nice = nice
		slot.recentCpu = creator.recentCpu
		s.policy.RecomputePriority(s, slot)
	}

	s.all[tid] = slot
	s.readyInsert(slot)

	creator := s.current
	shouldYield := slot.effectivePriority > creator.effectivePriority
	s.mu.Unlock()

	go s.threadMain(slot)

	if shouldYield {
		s.Yield()
	}

	return tid, nil
}

// Block is block() (spec §4.4): not callable from interrupt context.
// Sets the current thread BLOCKED and schedules away from it. Returns
// once this thread is scheduled back in.
func (s *Scheduler) Block() {
	s.mu.Lock()
	kassert(!s.inInterrupt, "block() called from interrupt context")
	s.current.status = StatusBlocked
	s.schedule()
	s.mu.Unlock()
}

// Unblock is unblock(t) (spec §4.4): t must be BLOCKED. Inserts t into
// the ready list at its priority's position and marks it READY. Safe to
// call from interrupt context (the timer does, for sleepers); never
// itself preempts — the caller decides whether to yield.
func (s *Scheduler) Unblock(tid TID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unblockLocked(tid)
}

// unblockLocked is Unblock's body, for callers that already hold s.mu
// (the timer tick handler, lock release).
func (s *Scheduler) unblockLocked(tid TID) {
	t := s.all[tid]
	kassert(t != nil, "unblock: no such thread %d", tid)
	kassert(t.status == StatusBlocked, "unblock: thread %d is not BLOCKED (status=%v)", tid, t.status)
	s.readyInsert(t)
}

// Yield is yield() (spec §4.4): not callable from interrupt context.
// Re-inserts the current thread into the ready list (unless it's idle)
// and reschedules — per invariant 4, a tie places it behind threads of
// equal priority already waiting.
func (s *Scheduler) Yield() {
	s.mu.Lock()
	kassert(!s.inInterrupt, "yield() called from interrupt context")
	cur := s.current
	if cur != s.idle {
		s.readyInsert(cur)
	}
	s.schedule()
	s.mu.Unlock()
}

// Exit is exit() (spec §4.4): not callable from interrupt context, never
// returns control to the caller's own thread body. Runs the optional
// process-teardown hook, removes the thread from the all-threads list,
// marks it DYING, and schedules away — scheduleTail on the successor
// frees this thread's storage once it has truly left the CPU.
func (s *Scheduler) Exit() {
	s.mu.Lock()
	kassert(!s.inInterrupt, "exit() called from interrupt context")
	cur := s.current
	if cur.exitHook != nil {
		hook := cur.exitHook
		s.mu.Unlock()
		hook()
		s.mu.Lock()
	}
	delete(s.all, cur.tid)
	cur.status = StatusDying
	s.schedule()
	// unreachable: doSwitch never returns to a dying thread's goroutine.
}

// Foreach is foreach(fn, aux) (spec §4.4): iterates every live thread.
// Requires interrupts disabled in the source; here, that precondition is
// satisfied internally by taking the scheduler lock for the duration of
// the call, so fn must not call back into any Scheduler method.
func (s *Scheduler) Foreach(fn func(ThreadInfo, any), aux any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.all {
		fn(snapshot(t), aux)
	}
}

// Current returns a snapshot of the currently running thread.
func (s *Scheduler) Current() ThreadInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.checkMagic()
	return snapshot(s.current)
}

// CurrentTID returns the tid() of the currently running thread.
func (s *Scheduler) CurrentTID() TID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.tid
}

// Name returns the name() of tid, or "" if it no longer exists.
func (s *Scheduler) Name(tid TID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.all[tid]; t != nil {
		return t.name
	}
	return ""
}

// SetExitHook installs the optional process-teardown hook Exit runs
// before tearing the thread down (spec §4.4's "performs process teardown
// hook if any").
func (s *Scheduler) SetExitHook(tid TID, hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.all[tid]; t != nil {
		t.exitHook = hook
	}
}
