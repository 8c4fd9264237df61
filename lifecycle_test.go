package kthread

import (
	"testing"
	"time"
)

func newStartedScheduler(cfg Config) *Scheduler {
	s := NewScheduler(cfg)
	s.Start()
	return s
}

func awaitOrFail(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestCreateRunsToCompletion(t *testing.T) {
	s := newStartedScheduler(Config{})

	done := make(chan struct{})
	if _, err := s.Create("worker", PriDefault, func(any) {
		close(done)
	}, nil, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s.Yield()
	awaitOrFail(t, done, "worker thread to run")
}

func TestCreateHigherPriorityPreemptsBeforeReturning(t *testing.T) {
	s := newStartedScheduler(Config{})
	s.SetPriority(s.CurrentTID(), 20)

	ran := false
	done := make(chan struct{})
	if _, err := s.Create("urgent", 40, func(any) {
		ran = true
		close(done)
	}, nil, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !ran {
		t.Error("expected the higher-priority thread to have already run by the time Create returned")
	}
	awaitOrFail(t, done, "urgent thread to finish")
}

func TestCreateAtOrBelowCreatorPriorityDoesNotPreempt(t *testing.T) {
	s := newStartedScheduler(Config{})
	s.SetPriority(s.CurrentTID(), 30)

	ran := false
	done := make(chan struct{})
	if _, err := s.Create("background", 10, func(any) {
		ran = true
		close(done)
	}, nil, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if ran {
		t.Error("expected a lower-priority thread not to run before Create returns")
	}

	// lowering the creator below the background thread's priority yields
	// and lets it finally run.
	s.SetPriority(s.CurrentTID(), 0)
	awaitOrFail(t, done, "background thread to eventually run")
}

func TestYieldRoundRobinsEqualPriority(t *testing.T) {
	s := newStartedScheduler(Config{})

	var order []string
	record := make(chan struct{})
	a := make(chan struct{})
	b := make(chan struct{})

	s.Create("a", PriDefault, func(any) {
		order = append(order, "a")
		close(a)
		s.Yield()
	}, nil, CreateOptions{})
	s.Create("b", PriDefault, func(any) {
		<-a
		order = append(order, "b")
		close(b)
	}, nil, CreateOptions{})

	go func() {
		<-b
		close(record)
	}()

	s.Yield()
	awaitOrFail(t, record, "both threads to run")

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
}

func TestExitRemovesThreadFromAllThreads(t *testing.T) {
	s := newStartedScheduler(Config{})

	done := make(chan struct{})
	tid, _ := s.Create("ephemeral", PriDefault, func(any) {
		close(done)
	}, nil, CreateOptions{})

	s.Yield()
	awaitOrFail(t, done, "ephemeral thread to exit")

	// give the exiting goroutine's successor a chance to run scheduleTail
	// and free the slot.
	s.Yield()

	if name := s.Name(tid); name != "" {
		t.Errorf("Name(%d) after exit = %q, want empty", tid, name)
	}
}

// TestScheduleTailFreesThreadsOwnHandleNotTIDCast exercises the first
// arena slot reuse after an exit, where a thread's tid and its arena
// handle diverge: tid is monotonic and never reused (spec §3), but the
// arena recycles freed handles. If scheduleTail ever freed a slot by
// casting the dying thread's tid instead of using its own stored handle,
// this would try to free a slot that was never allocated and panic.
func TestScheduleTailFreesThreadsOwnHandleNotTIDCast(t *testing.T) {
	s := newStartedScheduler(Config{})

	run := func(name string) {
		done := make(chan struct{})
		if _, err := s.Create(name, PriDefault, func(any) {
			close(done)
		}, nil, CreateOptions{}); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		s.Yield()
		awaitOrFail(t, done, name+" to exit")
		s.Yield() // let the successor run scheduleTail and free the slot
	}

	// T1's tid and arena handle coincide, since nothing has exited yet.
	// Exiting it frees that handle while the tid itself is retired for
	// good. T2 is then given a freshly allocated (monotonic) tid but
	// Alloc() recycles T1's just-freed handle for it, so tid and handle
	// diverge for T2 — exactly the case that must free correctly.
	run("T1")
	run("T2")
}

func TestBlockUnblock(t *testing.T) {
	s := newStartedScheduler(Config{})

	resumed := make(chan struct{})
	ready := make(chan struct{})
	tid, _ := s.Create("waiter", PriDefault, func(any) {
		close(ready)
		s.Block()
		close(resumed)
	}, nil, CreateOptions{})

	s.Yield()
	<-ready

	s.Unblock(tid)
	s.Yield()
	awaitOrFail(t, resumed, "unblocked thread to resume")
}

// TestForeachVisitsEveryLiveThread parks "visible" on the scheduler's own
// Block rather than a raw channel receive: a thread body that blocks on
// anything the scheduler doesn't know about would never hand the baton
// back, wedging the whole scheduler rather than just itself.
func TestForeachVisitsEveryLiveThread(t *testing.T) {
	s := newStartedScheduler(Config{})

	ready := make(chan struct{})
	done := make(chan struct{})
	tid, _ := s.Create("visible", PriDefault, func(any) {
		close(ready)
		s.Block()
		close(done)
	}, nil, CreateOptions{})

	s.Yield()
	<-ready

	seen := map[string]bool{}
	s.Foreach(func(info ThreadInfo, aux any) {
		seen[info.Name] = true
	}, nil)

	s.Unblock(tid)
	s.Yield()
	awaitOrFail(t, done, "visible thread to finish")

	if !seen["main"] {
		t.Error("expected Foreach to see the initial thread")
	}
	if !seen["idle"] {
		t.Error("expected Foreach to see the idle thread")
	}
	if !seen["visible"] {
		t.Error("expected Foreach to see the created thread")
	}
}

func TestSetExitHookRunsBeforeTeardown(t *testing.T) {
	s := newStartedScheduler(Config{})

	hookRan := make(chan struct{})
	done := make(chan struct{})
	tid, _ := s.Create("withhook", PriDefault, func(any) {
		close(done)
	}, nil, CreateOptions{})
	s.SetExitHook(tid, func() {
		close(hookRan)
	})

	s.Yield()
	awaitOrFail(t, done, "thread body to finish")
	awaitOrFail(t, hookRan, "exit hook to run")
}
