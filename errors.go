package kthread

import (
	"errors"
	"fmt"
)

// ErrNoFreeThreads is returned by Create when the thread arena is at
// capacity — the Go analogue of the page allocator having no free page
// (spec §7's only recoverable failure kind).
var ErrNoFreeThreads = errors.New("kthread: no free thread slots")

// kassert is the ASSERT() of this kernel: contract violations (spec §7)
// are fatal, not recoverable. Blocking in interrupt context, unblocking a
// thread that isn't blocked, an out-of-range priority, a stack-canary
// mismatch — all of these panic rather than return an error, matching the
// propagation policy the spec lays out ("only create has a recoverable
// failure; all others either succeed by construction or assert").
func kassert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("kthread: assertion failed: "+format, args...))
	}
}
