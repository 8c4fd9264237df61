package kthread

import "fmt"

// Tick is the timer interrupt handler (C6, spec §4.5): it runs in
// interrupt context and therefore must never block, yield, or sleep —
// the only scheduling action available to it is waking sleepers
// (Unblock) and setting the preempt-on-return flag. Ordering follows
// spec §4.5 exactly: classify, wake sleepers, bump thread_ticks, then
// hand off to the active policy for its own per-tick bookkeeping.
func (s *Scheduler) Tick(now uint64) {
	s.mu.Lock()
	s.inInterrupt = true
	s.ticks++

	// 1. classify the tick.
	switch {
	case s.current == s.idle:
		s.idleTicks++
	case s.current == s.initial:
		s.kernelTicks++
	default:
		s.userTicks++
	}

	// 2. wake sleepers whose deadline has passed.
	for _, t := range s.wakeDue(now) {
		s.unblockLocked(t.tid)
	}

	// 3. bump the time-slice counter; request preemption on return if
	// the quantum has expired. The actual yield happens later, from
	// task context, via ReturnFromInterrupt — never from here.
	if s.current != s.idle {
		s.threadTicks++
		if s.threadTicks >= s.cfg.TimeSlice {
			s.preemptOnReturn = true
		}
	}

	// 4. policy-specific bookkeeping (MLFQS recent_cpu/priority/load_avg;
	// no-op under priority-donation scheduling).
	s.policy.OnTick(s, now)

	s.inInterrupt = false
	s.mu.Unlock()
}

// ReturnFromInterrupt is the "preempt-on-return" half of spec §4.5/§6:
// called from task context immediately after a Tick, it yields if and
// only if Tick set the preempt-on-return flag. Splitting this out of
// Tick itself is what lets Tick stay interrupt-context-only while still
// honoring "preemption occurs only at interrupt return" (spec §1's
// non-goals).
func (s *Scheduler) ReturnFromInterrupt() {
	s.mu.Lock()
	preempt := s.preemptOnReturn
	s.preemptOnReturn = false
	s.mu.Unlock()
	if preempt {
		s.Yield()
	}
}

// Sleep is thread_sleep(ticks, now) (spec §4.5): called from task
// context. A non-positive duration is a no-op. Otherwise records the
// wake deadline, inserts into the sleeping list in order, and blocks;
// Sleep is not cancellable — it returns only once Tick has walked this
// thread off the sleeping list and unblocked it.
func (s *Scheduler) Sleep(ticks int, now uint64) {
	if ticks <= 0 {
		return
	}
	s.mu.Lock()
	kassert(!s.inInterrupt, "sleep() called from interrupt context")
	cur := s.current
	cur.wakeTime = now + uint64(ticks)
	s.sleepInsert(cur)
	cur.status = StatusBlocked
	s.schedule()
	s.mu.Unlock()
}

// TickCount returns the number of ticks processed so far.
func (s *Scheduler) TickCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// IdleTicks, UserTicks, KernelTicks report the per-category tick
// classification from step 1 of Tick (spec §4.5).
func (s *Scheduler) IdleTicks() uint64   { s.mu.Lock(); defer s.mu.Unlock(); return s.idleTicks }
func (s *Scheduler) UserTicks() uint64   { s.mu.Lock(); defer s.mu.Unlock(); return s.userTicks }
func (s *Scheduler) KernelTicks() uint64 { s.mu.Lock(); defer s.mu.Unlock(); return s.kernelTicks }

// PrintStats reports the idle/kernel/user tick breakdown, the same three
// counters thread_print_stats prints on shutdown.
func (s *Scheduler) PrintStats() {
	s.mu.Lock()
	idle, kernel, user := s.idleTicks, s.kernelTicks, s.userTicks
	s.mu.Unlock()
	fmt.Printf("thread: %d idle ticks, %d kernel ticks, %d user ticks\n", idle, kernel, user)
}
