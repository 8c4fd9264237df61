package main

import (
	"fmt"
	"math/rand"
	"sync"

	"kthread"
)

// runSoak generalizes the teacher's LoadGenT.genLoad (loadgen.go): instead
// of sampling comp/mem for simulated web requests, it samples a priority
// and a short run of sleeps/lock-contention for each of count threads, then
// drives the scheduler until they've all exited. Grounded the same way
// loadgen.go is: a seeded math/rand source, sampled once per thread.
func runSoak(policy kthread.SchedPolicy, count int, seed int64) {
	src := rand.New(rand.NewSource(seed))
	s := newDemoScheduler(policy)
	// drop the driver to PriMin so it never outranks a soak thread.
	s.SetPriority(s.CurrentTID(), kthread.PriMin)

	lock := s.NewLock()
	var wg sync.WaitGroup
	wg.Add(count)

	var completed int32
	var mu sync.Mutex

	for i := 0; i < count; i++ {
		priority := kthread.PriMin + src.Intn(kthread.PriMax-kthread.PriMin+1)
		sleepTicks := 1 + src.Intn(8)
		contend := src.Intn(4) == 0

		s.Create(fmt.Sprintf("soak-%d", i), priority, func(any) {
			if contend {
				lock.Acquire(s.CurrentTID())
			}
			s.Sleep(sleepTicks, s.TickCount())
			if contend {
				lock.Release(s.CurrentTID())
			}
			mu.Lock()
			completed++
			mu.Unlock()
			wg.Done()
		}, nil, kthread.CreateOptions{})
	}

	tick := uint64(1)
	for {
		s.Tick(tick)
		s.ReturnFromInterrupt()
		tick++
		mu.Lock()
		done := completed == int32(count)
		mu.Unlock()
		if done {
			break
		}
		if tick > uint64(count)*32 {
			fmt.Println("  soak: giving up, threads did not converge")
			break
		}
	}
	wg.Wait()
	fmt.Printf("  soak: %d threads completed in %d ticks\n", count, tick)
	s.PrintStats()
}
