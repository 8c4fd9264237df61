package kthread

import "testing"

func TestNewSchedulerInstallsInitialThread(t *testing.T) {
	s := NewScheduler(Config{})

	if s.current == nil || s.current.name != "main" {
		t.Fatalf("expected the initial thread to be named %q, got %v", "main", s.current)
	}
	if s.current.status != StatusRunning {
		t.Errorf("initial thread status = %v, want %v", s.current.status, StatusRunning)
	}
	if got := s.CurrentTID(); got != s.initial.tid {
		t.Errorf("CurrentTID() = %d, want %d", got, s.initial.tid)
	}
}

func TestStartInstallsIdleAndReturnsWithInitialRunning(t *testing.T) {
	s := NewScheduler(Config{})
	s.Start()

	if s.idle == nil {
		t.Fatal("expected Start to install an idle thread")
	}
	if s.current != s.initial {
		t.Error("expected the initial thread to be current again once Start returns")
	}
	if s.current.status != StatusRunning {
		t.Errorf("current thread status after Start = %v, want %v", s.current.status, StatusRunning)
	}
}

func TestCreateFailsWhenArenaIsFull(t *testing.T) {
	s := newStartedScheduler(Config{Capacity: 2}) // initial + idle already fill it

	if _, err := s.Create("overflow", PriDefault, func(any) {}, nil, CreateOptions{}); err != ErrNoFreeThreads {
		t.Errorf("Create on a full arena = %v, want ErrNoFreeThreads", err)
	}
}

func TestCurrentSnapshotReflectsLiveState(t *testing.T) {
	s := newStartedScheduler(Config{})
	s.SetPriority(s.CurrentTID(), 12)

	info := s.Current()
	if info.Name != "main" {
		t.Errorf("Current().Name = %q, want %q", info.Name, "main")
	}
	if info.EffectivePriority != 12 {
		t.Errorf("Current().EffectivePriority = %d, want 12", info.EffectivePriority)
	}
}

func TestSchedulerStringDoesNotPanic(t *testing.T) {
	s := newStartedScheduler(Config{Policy: PolicyMLFQS})
	if s.String() == "" {
		t.Error("expected a non-empty String() representation")
	}
}
