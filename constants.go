package kthread

// Scheduling constants, named the way the rest of the pack names its
// tunables (loadgen.go's N_PRIORITIES, machine_sched.go's PUSH_SLA_THRESHOLD):
// plain exported consts, no config struct for values that never vary
// across a kernel build.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63

	NiceMin = -20
	NiceMax = 20

	// TimeSlice is the default number of ticks a thread runs before the
	// timer requests preemption on interrupt return.
	TimeSlice = 4

	// TimerFreq is the default number of ticks per simulated second.
	TimerFreq = 100

	// Magic is the canary word stamped into every ThreadBlock.
	Magic = 0xcd6abf4b

	// DonationDepthLimit bounds the nested-donation walk (spec §4.6: "8
	// is traditional"). Exceeding it is a silent no-op, not an error.
	DonationDepthLimit = 8
)

// SchedPolicy selects one of the two scheduling disciplines spec §2
// describes: priority round-robin with donation, or 4.4BSD MLFQS.
type SchedPolicy int

const (
	PolicyPriority SchedPolicy = iota
	PolicyMLFQS
)

func (p SchedPolicy) String() string {
	switch p {
	case PolicyMLFQS:
		return "mlfqs"
	default:
		return "priority"
	}
}
