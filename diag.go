package kthread

import "fmt"

// Verbose gates the scheduler's diagnostic output, generalizing the
// teacher's scattered VERBOSE_SCHEDULER / VERBOSE_SCHED_STATS /
// VERBOSE_LB_STATS constants (scheduler.go, core_sched.go, world.go)
// into one runtime-settable switch per concern, since this package is a
// library embedded by callers rather than a single simulated world that
// recompiles its own verbosity.
var Verbose = struct {
	Sched  bool
	Donate bool
	Mlfqs  bool
}{}

func traceSched(format string, args ...any) {
	if Verbose.Sched {
		fmt.Printf("sched: "+format+"\n", args...)
	}
}

func traceDonate(format string, args ...any) {
	if Verbose.Donate {
		fmt.Printf("donate: "+format+"\n", args...)
	}
}

func traceMlfqs(format string, args ...any) {
	if Verbose.Mlfqs {
		fmt.Printf("mlfqs: "+format+"\n", args...)
	}
}
