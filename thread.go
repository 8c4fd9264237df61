package kthread

import (
	"container/list"
	"fmt"

	"kthread/internal/arena"
)

// TID identifies a thread uniquely for the life of the scheduler that
// created it (spec §3: "monotonically increasing identifier, unique per
// process lifetime").
type TID int64

// Status is one of the four states a ThreadBlock can be in (spec §3,
// invariant 1-3).
type Status int

const (
	StatusRunning Status = iota
	StatusReady
	StatusBlocked
	StatusDying
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusReady:
		return "READY"
	case StatusBlocked:
		return "BLOCKED"
	case StatusDying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

// thread is the ThreadBlock of spec §3. Its storage lives in the
// scheduler's arena (internal/arena), addressed by its arena handle (not
// its tid; see the handle field) the way Design Notes #2 recommends, in place of the page-aligned stack the original
// design embeds it in. Fields are unexported: callers interact through
// Scheduler methods and the read-only ThreadInfo snapshot, the
// encapsulation Design Notes #3 asks for ("a single Scheduler object
// whose methods document their interrupt-disable preconditions").
type thread struct {
	tid    TID
	name   string
	status Status

	// handle is this thread's actual arena slot. It is not the same
	// value as tid once any thread has ever exited and freed a slot:
	// tid is monotonic and never reused (spec §3), but arena handles are
	// recycled via the arena's free list, so the two only coincide by
	// accident for threads created before the first exit.
	handle arena.Handle

	basePriority      int
	effectivePriority int
	ownedLocks        map[*Lock]struct{}
	waitingOn         *Lock

	wakeTime uint64

	nice      int
	recentCpu FixedPoint

	magic uint32

	readyElem *list.Element
	sleepElem *list.Element
	waitElem  *list.Element

	// baton is how this package's goroutine-based analogue of the
	// external context-switch primitive hands control to this thread:
	// whoever switches into this thread sends the thread that just
	// stopped running, so the receiver can run scheduleTail for it.
	// See scheduler.go for the full discipline.
	baton chan *thread

	fn       func(aux any)
	aux      any
	exitHook func()

	isIdle bool
}

func newThread(tid TID, name string, prio int) *thread {
	if len(name) > maxThreadNameLen {
		name = name[:maxThreadNameLen]
	}
	return &thread{
		tid:               tid,
		name:              name,
		status:            StatusBlocked,
		basePriority:      prio,
		effectivePriority: prio,
		ownedLocks:        make(map[*Lock]struct{}),
		magic:             Magic,
		baton:             make(chan *thread),
	}
}

const maxThreadNameLen = 32

func (t *thread) String() string {
	return fmt.Sprintf("{tid:%d name:%q status:%v base:%d eff:%d nice:%d}",
		t.tid, t.name, t.status, t.basePriority, t.effectivePriority, t.nice)
}

func (t *thread) checkMagic() {
	kassert(t.magic == Magic, "stack overflow detected in thread %d (%s)", t.tid, t.name)
}

// ThreadInfo is a point-in-time, read-only snapshot of a thread, handed
// out by Current and Foreach so callers can't mutate scheduler state
// except through the exposed operations.
type ThreadInfo struct {
	TID               TID
	Name              string
	Status            Status
	BasePriority      int
	EffectivePriority int
	Nice              int
	RecentCpu         FixedPoint
}

func snapshot(t *thread) ThreadInfo {
	return ThreadInfo{
		TID:               t.tid,
		Name:              t.name,
		Status:            t.status,
		BasePriority:      t.basePriority,
		EffectivePriority: t.effectivePriority,
		Nice:              t.nice,
		RecentCpu:         t.recentCpu,
	}
}
