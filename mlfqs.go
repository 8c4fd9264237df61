package kthread

// mlfqs.go is C8: nice, recent_cpu, load_avg, and the periodic
// recomputation loop of 4.4BSD MLFQS (spec §4.7). All arithmetic is
// 17.14 fixed-point (C1, fixedpoint.go) — the spec is explicit that
// recent_cpu and load_avg must never touch a float.

var (
	fp59over60 = FixedFromInt(59).Div(FixedFromInt(60))
	fp1over60  = FixedFromInt(1).Div(FixedFromInt(60))
)

// mlfqsTick runs the per-tick MLFQS bookkeeping (spec §4.7 "per tick").
// Called from Tick with s.mu held and s.ticks already incremented.
func (s *Scheduler) mlfqsTick(now uint64) {
	if s.current != s.idle {
		s.current.recentCpu = s.current.recentCpu.AddInt(1)
	}

	if s.ticks%4 == 0 {
		for _, t := range s.all {
			s.mlfqsRecomputePriority(t)
		}
		traceMlfqs("tick=%d recomputed all priorities", s.ticks)
	}

	if s.ticks%uint64(s.cfg.TimerFreq) == 0 {
		s.mlfqsRecomputeLoadAvg()
		for _, t := range s.all {
			s.mlfqsRecomputeRecentCpu(t)
		}
		traceMlfqs("tick=%d load_avg=%v", s.ticks, s.loadAvg)
	}
}

// mlfqsRecomputePriority is the "every 4 ticks" formula: priority =
// PRI_MAX - round(recent_cpu/4) - 2*nice, clamped to [PRI_MIN, PRI_MAX].
// Under MLFQS this directly overwrites both base and effective priority
// — authentic to the source, where recompute clobbers thread->priority
// outright every 4 ticks regardless of any donation in progress; a
// donation can still raise effective priority again before the next
// recompute if a lock is contended in between.
func (s *Scheduler) mlfqsRecomputePriority(t *thread) {
	pri := PriMax - t.recentCpu.DivInt(4).Round() - 2*t.nice
	pri = clamp(pri, PriMin, PriMax)

	if pri == t.effectivePriority && pri == t.basePriority {
		return
	}
	t.basePriority = pri
	t.effectivePriority = pri
	if t.status == StatusReady {
		s.readyReinsert(t)
	}
}

// mlfqsRecomputeLoadAvg is the "every second" load_avg formula:
// load_avg = (59/60)*load_avg + (1/60)*ready_threads, where
// ready_threads counts the ready list plus the current thread if it
// isn't idle.
func (s *Scheduler) mlfqsRecomputeLoadAvg() {
	readyThreads := s.ready.Len()
	if s.current != s.idle {
		readyThreads++
	}
	s.loadAvg = fp59over60.Mul(s.loadAvg).Add(fp1over60.Mul(FixedFromInt(readyThreads)))
}

// mlfqsRecomputeRecentCpu is the "every second" recent_cpu formula:
// recent_cpu = (2*load_avg)/(2*load_avg+1) * recent_cpu + nice.
func (s *Scheduler) mlfqsRecomputeRecentCpu(t *thread) {
	twoLA := s.loadAvg.MulInt(2)
	coeff := twoLA.Div(twoLA.AddInt(1))
	t.recentCpu = coeff.Mul(t.recentCpu).AddInt(t.nice)
}

// SetNice is set_nice(n) (spec §4.7): clamps to [NiceMin, NiceMax],
// recomputes this thread's priority, and — if that drops it below the
// best ready thread — yields. Under priority-donation scheduling, nice
// is recorded but doesn't affect scheduling (MLFQS is the only policy
// that consults it); this resolves spec §9's silence on the
// priority-policy case the same direction as GetNice/GetPriority's other
// always-defined behavior.
func (s *Scheduler) SetNice(tid TID, nice int) {
	s.mu.Lock()
	nice = clamp(nice, NiceMin, NiceMax)
	t := s.all[tid]
	kassert(t != nil, "set_nice: no such thread %d", tid)
	t.nice = nice

	if s.cfg.Policy != PolicyMLFQS {
		s.mu.Unlock()
		return
	}

	s.mlfqsRecomputePriority(t)
	outranked := s.readyHeadPriority() > t.effectivePriority
	s.mu.Unlock()

	if outranked {
		s.Yield()
	}
}

// GetNice is get_nice().
func (s *Scheduler) GetNice(tid TID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.all[tid]
	kassert(t != nil, "get_nice: no such thread %d", tid)
	return t.nice
}

// GetLoadAvg is get_load_avg(): the system load average scaled by 100
// and rounded to the nearest integer (spec §4.7 "Reporting").
func (s *Scheduler) GetLoadAvg() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAvg.MulInt(100).Round()
}

// GetRecentCpu is get_recent_cpu(): tid's recent_cpu scaled by 100 and
// rounded to the nearest integer.
func (s *Scheduler) GetRecentCpu(tid TID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.all[tid]
	kassert(t != nil, "get_recent_cpu: no such thread %d", tid)
	return t.recentCpu.MulInt(100).Round()
}
