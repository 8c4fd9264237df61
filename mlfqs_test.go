package kthread

import (
	"testing"

	"kthread/internal/kstat"
)

func TestMlfqsRecomputePriorityFormula(t *testing.T) {
	s := NewScheduler(Config{Policy: PolicyMLFQS})
	th := newThread(1000, "t", PriDefault)
	th.recentCpu = FixedFromInt(20)
	th.nice = 2

	s.mlfqsRecomputePriority(th)

	// priority = PRI_MAX - recent_cpu/4 - 2*nice = 63 - 5 - 4 = 54.
	if th.effectivePriority != 54 {
		t.Errorf("effectivePriority = %d, want 54", th.effectivePriority)
	}
	if th.basePriority != 54 {
		t.Errorf("basePriority = %d, want 54", th.basePriority)
	}
}

func TestMlfqsRecomputePriorityClampsToRange(t *testing.T) {
	s := NewScheduler(Config{Policy: PolicyMLFQS})

	hot := newThread(1000, "hot", PriDefault)
	hot.recentCpu = FixedFromInt(1000)
	s.mlfqsRecomputePriority(hot)
	if hot.effectivePriority != PriMin {
		t.Errorf("effectivePriority for a very hot thread = %d, want %d", hot.effectivePriority, PriMin)
	}

	cold := newThread(1001, "cold", PriDefault)
	cold.nice = NiceMin
	s.mlfqsRecomputePriority(cold)
	if cold.effectivePriority != PriMax {
		t.Errorf("effectivePriority for nice=NiceMin, recent_cpu=0 = %d, want %d", cold.effectivePriority, PriMax)
	}
}

func TestMlfqsRecomputeLoadAvg(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})

	s.mu.Lock()
	s.loadAvg = 0
	s.mlfqsRecomputeLoadAvg()
	got := s.loadAvg
	s.mu.Unlock()

	// ready=0, current=initial (not idle), so ready_threads=1:
	// load_avg = 59/60*0 + 1/60*1 = 1/60.
	want := fp1over60
	if got != want {
		t.Errorf("loadAvg after one recompute with one active thread = %v, want %v", got, want)
	}
}

func TestMlfqsRecomputeRecentCpuDecaysTowardZero(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})

	th := newThread(1000, "t", PriDefault)
	th.recentCpu = FixedFromInt(100)

	s.mu.Lock()
	s.loadAvg = FixedFromInt(1) // load_avg = 1: coeff = 2/3
	s.mlfqsRecomputeRecentCpu(th)
	got := th.recentCpu
	s.mu.Unlock()

	if got >= FixedFromInt(100) {
		t.Errorf("recent_cpu after decay = %v, want less than 100", got)
	}
	if got < FixedFromInt(60) || got > FixedFromInt(70) {
		t.Errorf("recent_cpu after decay = %v, want close to 2/3*100=66.67", got)
	}
}

// TestMlfqsRecentCpuDecayConvergesMonotonically drives recent_cpu decay
// (spec §4.4's recent_cpu formula) across many recomputes under a fixed
// load_avg and checks, via internal/kstat, that the series heads toward
// zero without ever reversing and lands within tolerance of it — the
// same decay TestMlfqsRecomputeRecentCpuDecaysTowardZero checks after a
// single step, carried out to convergence instead of stopping at one
// hand-picked bound.
func TestMlfqsRecentCpuDecayConvergesMonotonically(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})
	th := newThread(1000, "t", PriDefault)
	th.recentCpu = FixedFromInt(100)

	samples := make([]float64, 0, 30)
	s.mu.Lock()
	s.loadAvg = FixedFromInt(1) // coeff = 2*1/(2*1+1) = 2/3 held constant
	for i := 0; i < 30; i++ {
		s.mlfqsRecomputeRecentCpu(th)
		samples = append(samples, th.recentCpu.Float64())
	}
	s.mu.Unlock()

	if !kstat.ConvergesMonotonically(samples, 0, 5) {
		t.Errorf("recent_cpu samples %v do not converge monotonically toward 0", samples)
	}
	if last := samples[len(samples)-1]; !kstat.WithinTolerance(last, 0, 0.5) {
		t.Errorf("recent_cpu after 30 decays = %v, want within 0.5 of 0", last)
	}
}

// TestMlfqsLoadAvgConvergesTowardSteadyState holds ready_threads constant
// (one thread, the caller, always running and never queued) and checks,
// via internal/kstat, that repeated load_avg recomputes (spec §4.4) climb
// monotonically toward that steady-state value of 1 and land within
// tolerance of it.
func TestMlfqsLoadAvgConvergesTowardSteadyState(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})

	samples := make([]float64, 0, 400)
	s.mu.Lock()
	s.loadAvg = 0
	for i := 0; i < 400; i++ {
		s.mlfqsRecomputeLoadAvg()
		samples = append(samples, s.loadAvg.Float64())
	}
	s.mu.Unlock()

	if !kstat.ConvergesMonotonically(samples, 1.0, 5) {
		t.Errorf("load_avg samples do not converge monotonically toward 1.0, last few: %v", samples[len(samples)-5:])
	}
	if last := samples[len(samples)-1]; !kstat.WithinTolerance(last, 1.0, 0.01) {
		t.Errorf("load_avg after 400 recomputes = %v, want within 0.01 of 1.0", last)
	}
}

func TestSetNiceRecordedUnderPriorityPolicyButInert(t *testing.T) {
	s := newStartedScheduler(Config{})
	tid := s.CurrentTID()
	before := s.GetPriority(tid)

	s.SetNice(tid, 15)

	if got := s.GetNice(tid); got != 15 {
		t.Errorf("GetNice = %d, want 15", got)
	}
	if got := s.GetPriority(tid); got != before {
		t.Errorf("priority changed from %d to %d after SetNice under priority scheduling, want unchanged", before, got)
	}
}

func TestSetNiceClampsToRange(t *testing.T) {
	s := newStartedScheduler(Config{})
	tid := s.CurrentTID()

	s.SetNice(tid, 1000)
	if got := s.GetNice(tid); got != NiceMax {
		t.Errorf("GetNice after SetNice(1000) = %d, want %d", got, NiceMax)
	}

	s.SetNice(tid, -1000)
	if got := s.GetNice(tid); got != NiceMin {
		t.Errorf("GetNice after SetNice(-1000) = %d, want %d", got, NiceMin)
	}
}

func TestGetLoadAvgAndRecentCpuAreScaledByHundred(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})

	s.mu.Lock()
	s.loadAvg = FixedFromFloat64(0.5)
	s.mu.Unlock()

	if got := s.GetLoadAvg(); got != 50 {
		t.Errorf("GetLoadAvg() = %d, want 50", got)
	}

	tid := s.CurrentTID()
	s.mu.Lock()
	s.all[tid].recentCpu = FixedFromFloat64(2.25)
	s.mu.Unlock()

	if got := s.GetRecentCpu(tid); got != 225 {
		t.Errorf("GetRecentCpu() = %d, want 225", got)
	}
}

func TestMlfqsRecentCpuGrowsWithTicks(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})
	tid := s.CurrentTID()

	for tick := uint64(1); tick <= 10; tick++ {
		s.Tick(tick)
		s.ReturnFromInterrupt()
	}

	if got := s.GetRecentCpu(tid); got <= 0 {
		t.Errorf("recent_cpu after 10 ticks of running = %d, want > 0", got)
	}
	if got := s.KernelTicks(); got != 10 {
		t.Errorf("KernelTicks() = %d, want 10", got)
	}
}
