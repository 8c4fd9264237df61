package kthread

// Policy is the seam between the two mutually exclusive scheduling
// disciplines spec §2 describes: priority round-robin with donation, and
// 4.4BSD MLFQS. A Scheduler picks one at construction (Config.Policy,
// the Go analogue of the "-o mlfqs" kernel command-line flag) and never
// switches at runtime.
type Policy interface {
	// OnTick runs once per timer tick with the scheduler lock held,
	// after sleepers have been woken and thread_ticks updated. MLFQS
	// uses this for the recent_cpu/priority/load_avg bookkeeping of
	// spec §4.7; priority-donation scheduling has nothing to do here.
	OnTick(s *Scheduler, now uint64)

	// RecomputePriority recomputes t's priority from its policy-owned
	// state (base priority + donation for priority-donation scheduling;
	// nice + recent_cpu for MLFQS) and reinserts t into the ready list
	// if its position changed. Called with the scheduler lock held.
	RecomputePriority(s *Scheduler, t *thread)

	// AllowSetPriority reports whether an explicit SetPriority call is
	// honored. False under MLFQS (spec §4.6: "explicit priority set is
	// a no-op").
	AllowSetPriority() bool
}

// priorityPolicy is the priority-donation round-robin discipline (spec
// §4.6). It has no per-tick bookkeeping of its own; recomputing a
// thread's priority is exactly refreshEffectiveLocked.
type priorityPolicy struct{}

func (priorityPolicy) OnTick(s *Scheduler, now uint64) {}

func (priorityPolicy) RecomputePriority(s *Scheduler, t *thread) {
	s.refreshEffectiveLocked(t)
}

func (priorityPolicy) AllowSetPriority() bool { return true }

// mlfqsPolicy is the 4.4BSD MLFQS discipline (spec §4.7), implemented in
// mlfqs.go.
type mlfqsPolicy struct{}

func (mlfqsPolicy) OnTick(s *Scheduler, now uint64) {
	s.mlfqsTick(now)
}

func (mlfqsPolicy) RecomputePriority(s *Scheduler, t *thread) {
	s.mlfqsRecomputePriority(t)
}

func (mlfqsPolicy) AllowSetPriority() bool { return false }
