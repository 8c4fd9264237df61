package main

import (
	"fmt"
	"sync"

	"kthread"
)

// recorder is the demo's minimal event log — just enough to print the
// ordering a scenario produced, the way the teacher's World.String()
// prints machine/queue state for a human to eyeball (world.go).
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) log(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) dump() {
	for _, e := range r.events {
		fmt.Println("  " + e)
	}
}

// scenarioPriorityPreempts is spec §8 scenario 1: create T_low at 20,
// then T_high at 40 from a task running at 30. Expected order: creator
// yields, T_high runs to completion, creator resumes, T_low runs.
func scenarioPriorityPreempts(policy kthread.SchedPolicy) {
	s := newDemoScheduler(policy)
	s.SetPriority(s.CurrentTID(), 30)

	var rec recorder
	var wg sync.WaitGroup
	wg.Add(2)

	s.Create("T_low", 20, func(any) {
		rec.log("T_low running")
		wg.Done()
	}, nil, kthread.CreateOptions{})

	s.Create("T_high", 40, func(any) {
		rec.log("T_high running (should be first)")
		wg.Done()
	}, nil, kthread.CreateOptions{})

	rec.log("creator resumed")
	// drop below T_low so the yield hands it the CPU.
	s.SetPriority(s.CurrentTID(), kthread.PriMin)
	s.Yield()
	wg.Wait()
	rec.dump()
}

// scenarioSleepOrdering is spec §8 scenario 2: three threads sleep at
// tick 0 for 30, 10, and 20 ticks; they should wake in order 10, 20, 30.
func scenarioSleepOrdering(policy kthread.SchedPolicy) {
	s := newDemoScheduler(policy)

	var rec recorder
	var wg sync.WaitGroup
	wg.Add(3)

	durations := map[string]int{"A": 30, "B": 10, "C": 20}
	for _, name := range []string{"A", "B", "C"} {
		name, d := name, durations[name]
		s.Create(name, kthread.PriDefault, func(any) {
			s.Sleep(d, 0)
			rec.log("thread %s woke after %d ticks", name, d)
			wg.Done()
		}, nil, kthread.CreateOptions{})
	}

	for tick := uint64(1); tick <= 30; tick++ {
		s.Tick(tick)
		s.ReturnFromInterrupt()
	}
	// the tick-30 wake-up does not land on a quantum boundary; yield so
	// the last sleeper gets to run.
	s.Yield()
	wg.Wait()
	rec.dump()
}

// scenarioDonationChain is spec §8 scenario 3: L/M/H at priorities
// 10/20/30. H blocks on a lock held by M, which is itself blocked on a
// lock held by L. After donation, L runs at 30; once L releases, it
// drops to 10, M runs at 30 via donation from H, and once M releases it
// drops back to 20.
func scenarioDonationChain(policy kthread.SchedPolicy) {
	s := newDemoScheduler(policy)
	// drop below L, M and H so the creator never outranks them.
	s.SetPriority(s.CurrentTID(), kthread.PriMin)
	lockA := s.NewLock() // held by L, contended by M
	lockB := s.NewLock() // held by M, contended by H

	var rec recorder
	var wg sync.WaitGroup
	wg.Add(3)

	s.Create("L", 10, func(any) {
		lockA.Acquire(s.CurrentTID())
		rec.log("L acquired lockA at effective priority %d", s.GetPriority(s.CurrentTID()))
		s.Sleep(5, s.TickCount())
		rec.log("L releasing lockA, was at effective priority %d", s.GetPriority(s.CurrentTID()))
		lockA.Release(s.CurrentTID())
		rec.log("L effective priority after release: %d", s.GetPriority(s.CurrentTID()))
		wg.Done()
	}, nil, kthread.CreateOptions{})

	s.Create("M", 20, func(any) {
		lockB.Acquire(s.CurrentTID())
		lockA.Acquire(s.CurrentTID())
		rec.log("M acquired lockB at effective priority %d", s.GetPriority(s.CurrentTID()))
		s.Sleep(5, s.TickCount())
		rec.log("M releasing lockB, was at effective priority %d", s.GetPriority(s.CurrentTID()))
		lockB.Release(s.CurrentTID())
		rec.log("M effective priority after release: %d", s.GetPriority(s.CurrentTID()))
		lockA.Release(s.CurrentTID())
		wg.Done()
	}, nil, kthread.CreateOptions{})

	s.Create("H", 30, func(any) {
		lockB.Acquire(s.CurrentTID())
		rec.log("H acquired lockB")
		lockB.Release(s.CurrentTID())
		wg.Done()
	}, nil, kthread.CreateOptions{})

	for tick := uint64(1); tick <= 40; tick++ {
		s.Tick(tick)
		s.ReturnFromInterrupt()
	}
	wg.Wait()
	rec.dump()
}

// scenarioMlfqsDecay is spec §8 scenario 4: one thread runs for a
// simulated second at nice=0 with nothing else ready; recent_cpu climbs
// by one per tick and, after the one-second recompute, load_avg is near
// 1/60 and the thread's priority has dropped from its value at the first
// 4-tick recompute.
func scenarioMlfqsDecay(policy kthread.SchedPolicy) {
	if policy != kthread.PolicyMLFQS {
		fmt.Println("  (skipped: requires -o mlfqs)")
		return
	}
	s := newDemoScheduler(policy)
	var startPri int

	for tick := uint64(1); tick <= 100; tick++ {
		s.Tick(tick)
		s.ReturnFromInterrupt()
		if tick == 4 {
			startPri = s.GetPriority(s.CurrentTID())
		}
	}

	fmt.Printf("  recent_cpu=%d load_avg=%d priority %d -> %d\n",
		s.GetRecentCpu(s.CurrentTID()), s.GetLoadAvg(), startPri, s.GetPriority(s.CurrentTID()))
}

// scenarioNiceAffectsPriority is spec §8 scenario 5: a thread sets
// nice=10; its priority drops by 20 immediately. The thread first
// runs through one 4-tick recompute, so that its starting priority is
// the MLFQS formula value rather than the PRI_DEFAULT it was created with.
func scenarioNiceAffectsPriority(policy kthread.SchedPolicy) {
	if policy != kthread.PolicyMLFQS {
		fmt.Println("  (skipped: requires -o mlfqs)")
		return
	}
	s := newDemoScheduler(policy)
	for tick := uint64(1); tick <= 4; tick++ {
		s.Tick(tick)
		s.ReturnFromInterrupt()
	}
	before := s.GetPriority(s.CurrentTID())
	s.SetNice(s.CurrentTID(), 10)
	after := s.GetPriority(s.CurrentTID())
	fmt.Printf("  priority %d -> %d (delta %d)\n", before, after, after-before)
}

// scenarioCreateTriggersYield is spec §8 scenario 6: a task at priority
// 20 creates a thread at priority 40; by the time Create returns, the
// new thread has run at least once.
func scenarioCreateTriggersYield(policy kthread.SchedPolicy) {
	s := newDemoScheduler(policy)
	s.SetPriority(s.CurrentTID(), 20)

	ran := false
	var wg sync.WaitGroup
	wg.Add(1)
	s.Create("T_high", 40, func(any) {
		ran = true
		wg.Done()
	}, nil, kthread.CreateOptions{})

	fmt.Printf("  new thread ran before Create returned: %v\n", ran)
	wg.Wait()
}
