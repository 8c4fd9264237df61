package kthread

import (
	"container/list"
	"fmt"
	"sync"

	"kthread/internal/arena"
)

// Config configures a Scheduler at construction, the way newWorld's
// (world.go) and newSched's (scheduler.go) parameters configure the
// teacher's simulated world, generalized into a struct so a test can
// build many independently-configured schedulers instead of reading
// package-level constants.
type Config struct {
	// Policy selects priority-donation round robin or MLFQS (spec §6's
	// "-o mlfqs" flag). Zero value is PolicyPriority.
	Policy SchedPolicy

	// Capacity bounds the thread arena. Zero means DefaultCapacity.
	Capacity int

	// TimeSlice overrides TimeSlice ticks per quantum. Zero means the
	// package default.
	TimeSlice int

	// TimerFreq overrides ticks-per-second for the MLFQS 1-second
	// recompute. Zero means the package default.
	TimerFreq int

	// ActivateAddressSpace is the optional user-process address-space
	// activation hook spec §4.3/§6 mentions as a consumed interface.
	// Nil is the common case (pure kernel-thread workloads).
	ActivateAddressSpace func(ThreadInfo)
}

const DefaultCapacity = 4096

// Scheduler is the C4 Scheduler: it owns the ready list, all-threads
// registry, sleeping list, and the current-thread pointer Design Notes
// #1 recommends in place of stack-pointer alignment tricks. Every
// exported method documents whether it must be called with the
// scheduler's lock held — the Go stand-in for "interrupts disabled"
// (spec §5: "protected by interrupt disable, not locks, since this is
// uniprocessor"); a real mutex is the correct single-CPU analogue, not a
// weakening of the design.
type Scheduler struct {
	mu sync.Mutex

	arena *arena.Arena[thread]
	all   map[TID]*thread

	ready    *list.List
	sleeping *list.List

	current *thread
	idle    *thread
	initial *thread

	policy      Policy
	cfg         Config
	ticks       uint64
	threadTicks int

	preemptOnReturn bool
	inInterrupt     bool

	idleTicks   uint64
	userTicks   uint64
	kernelTicks uint64

	loadAvg FixedPoint

	tidMu   sync.Mutex
	nextTID TID
}

// NewScheduler builds a Scheduler and installs the initial thread to
// represent the goroutine calling NewScheduler, the way thread_init()
// in the source reuses the already-running boot stack for
// initial_thread rather than allocating a fresh one. Start must be
// called once, from the same goroutine, before any other thread runs.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TimeSlice == 0 {
		cfg.TimeSlice = TimeSlice
	}
	if cfg.TimerFreq == 0 {
		cfg.TimerFreq = TimerFreq
	}

	s := &Scheduler{
		arena:    arena.New[thread](cfg.Capacity),
		all:      make(map[TID]*thread),
		ready:    list.New(),
		sleeping: list.New(),
		cfg:      cfg,
	}
	if cfg.Policy == PolicyMLFQS {
		s.policy = mlfqsPolicy{}
	} else {
		s.policy = priorityPolicy{}
	}

	h, slot, ok := s.arena.Alloc()
	if !ok {
		panic("kthread: arena has zero capacity")
	}
	*slot = *newThread(TID(h), "main", PriDefault)
	slot.handle = h
	s.initial = slot
	s.initial.status = StatusRunning
	s.all[s.initial.tid] = s.initial
	s.current = s.initial
	s.nextTID = TID(h) + 1

	return s
}

func (s *Scheduler) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("{policy:%v ticks:%d threads:%d ready:%d current:%s}",
		s.cfg.Policy, s.ticks, len(s.all), s.ready.Len(), s.current.String())
}

// Start installs the idle thread and lets it take over long enough to
// publish itself, mirroring thread_start()'s idle_started handshake: the
// calling goroutine blocks, which (because the ready list is empty)
// schedules the idle thread in; idle records itself, unblocks the
// caller, and immediately blocks itself again. Block's own schedule()
// call is what then switches back into the caller, so by the time Start
// returns, idle has genuinely run once and is parked, and the caller is
// back to RUNNING — no separate handshake channel needed, since the
// baton channels already serialize the two goroutines.
func (s *Scheduler) Start() {
	tid := s.allocTID()

	s.mu.Lock()
	h, slot, ok := s.arena.Alloc()
	kassert(ok, "no capacity left to create the idle thread")
	*slot = *newThread(tid, "idle", PriMin)
	slot.handle = h
	slot.isIdle = true
	s.all[tid] = slot
	s.idle = slot
	s.mu.Unlock()

	go s.idleMain(slot)

	s.Block()
}

// allocTID is tid_lock's job: hand out the next monotonic TID. Separate
// from the scheduler's own lock because allocation only ever happens
// outside interrupt context (spec §5), so it doesn't need the same
// discipline as the ready/sleeping/all-threads lists.
func (s *Scheduler) allocTID() TID {
	s.tidMu.Lock()
	defer s.tidMu.Unlock()
	t := s.nextTID
	s.nextTID++
	return t
}

// threadMain is the body every non-idle goroutine runs: park until first
// scheduled in, run the user function, then exit. This replaces the
// three-stack-frame bootstrap spec §4.4 describes (trampoline frame +
// switch-entry frame + switch-threads frame) — Go's own goroutine stack
// setup does that job; what's left to reproduce is the scheduling
// handshake, which parkAndTail provides.
func (s *Scheduler) threadMain(t *thread) {
	s.parkAndTail(t)
	s.mu.Unlock()
	t.fn(t.aux)
	s.Exit()
}

// idleMain is the idle thread's loop (spec §4.4): once first scheduled
// in, unblock the thread that called Start, then block forever —
// next_to_run hands idle the CPU only when the ready list is empty.
func (s *Scheduler) idleMain(t *thread) {
	s.parkAndTail(t)
	s.mu.Unlock()

	s.Unblock(s.initial.tid)

	for {
		s.Block()
	}
}

// schedule is C4's schedule(): precondition, the caller already set its
// own status away from RUNNING and holds s.mu. Picks the next thread to
// run and, if it differs from current, performs the context switch.
// Always returns with s.mu held.
func (s *Scheduler) schedule() {
	kassert(s.current.status != StatusRunning, "schedule called with current thread still RUNNING")

	next := s.nextToRun()
	prev := s.current
	if next == prev {
		s.scheduleTail(nil)
		return
	}
	s.current = next
	s.doSwitch(prev, next)
}

// nextToRun is next_to_run(): pop the ready list's head, or hand back
// idle if it's empty. idle is deliberately never a member of the ready
// list (spec §4.4), so this is the only path that ever selects it.
func (s *Scheduler) nextToRun() *thread {
	if t := s.popReady(); t != nil {
		return t
	}
	return s.idle
}

// doSwitch hands the baton to next and, unless prev is dying, parks prev
// until it is scheduled again. This is this package's Go-native stand-in
// for the out-of-scope CPU context-switch primitive: instead of saving
// and restoring registers, we park and resume goroutines with a channel.
// Must be called with s.mu held, from within prev's own goroutine; the
// lock is released before the baton is handed over, so the next thread's
// scheduleTail can take it, and (unless prev is dying) parkAndTail takes
// it again before doSwitch returns.
func (s *Scheduler) doSwitch(prev, next *thread) {
	s.mu.Unlock()
	next.baton <- prev
	if prev.status == StatusDying {
		// prev's goroutine ends here, permanently — the Go analogue of
		// exit() never returning.
		return
	}
	s.parkAndTail(prev)
}

// parkAndTail blocks until t is handed the baton again, then runs
// scheduleTail in t's own context — every thread, whether newly created
// or resumed after a switch, passes through here exactly once per time
// it becomes current. Returns with s.mu held.
func (s *Scheduler) parkAndTail(t *thread) {
	resumedFrom := <-t.baton
	s.mu.Lock()
	s.scheduleTail(resumedFrom)
}

// scheduleTail is schedule_tail(prev) (spec §4.3): mark current RUNNING,
// reset the time-slice counter, activate the address space if the hook
// is set, and free the dying predecessor's arena slot — never the
// predecessor's own job, always the successor's, which is what makes
// freeing safe without the dying thread ever touching its own storage
// again.
func (s *Scheduler) scheduleTail(prev *thread) {
	cur := s.current
	cur.status = StatusRunning
	s.threadTicks = 0

	if s.cfg.ActivateAddressSpace != nil {
		s.cfg.ActivateAddressSpace(snapshot(cur))
	}

	if prev != nil && prev.status == StatusDying && prev != s.initial {
		delete(s.all, prev.tid)
		s.arena.Free(prev.handle)
	}
	traceSched("now running tid=%d name=%q", cur.tid, cur.name)
}
