// Command kthreadsim is the scenario runner for the kthread scheduler,
// generalizing the teacher's main.go/World.Tick()-driven demo loop
// (newWorld, w.Run(nTick)) from a simulated datacenter into a driver for
// the six end-to-end scenarios spec.md §8 describes. It also accepts the
// same kind of kernel command-line flag the spec's external-interfaces
// section names: -o mlfqs selects the MLFQS policy, the priority-donation
// round robin otherwise.
package main

import (
	"flag"
	"fmt"
	"os"

	"kthread"
)

func main() {
	var (
		mode      = flag.String("o", "priority", "scheduling policy: priority|mlfqs")
		scenario  = flag.String("scenario", "all", "scenario to run: preempt|sleep|donate|mlfqs|nice|create|soak|all")
		soakCount = flag.Int("soak-threads", 200, "number of threads to spawn for the soak scenario")
		seed      = flag.Int64("seed", 1, "random seed for the soak scenario")
	)
	flag.Parse()

	policy := kthread.PolicyPriority
	if *mode == "mlfqs" {
		policy = kthread.PolicyMLFQS
	}

	scenarios := map[string]func(kthread.SchedPolicy){
		"preempt": scenarioPriorityPreempts,
		"sleep":   scenarioSleepOrdering,
		"donate":  scenarioDonationChain,
		"mlfqs":   scenarioMlfqsDecay,
		"nice":    scenarioNiceAffectsPriority,
		"create":  scenarioCreateTriggersYield,
	}

	run := func(name string, fn func(kthread.SchedPolicy)) {
		fmt.Printf("=== %s (policy=%v) ===\n", name, policy)
		fn(policy)
		fmt.Println()
	}

	switch *scenario {
	case "all":
		for _, name := range []string{"preempt", "sleep", "donate", "mlfqs", "nice", "create"} {
			run(name, scenarios[name])
		}
		runSoak(policy, *soakCount, *seed)
	case "soak":
		runSoak(policy, *soakCount, *seed)
	default:
		fn, ok := scenarios[*scenario]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *scenario)
			os.Exit(2)
		}
		run(*scenario, fn)
	}
}

func newDemoScheduler(policy kthread.SchedPolicy) *kthread.Scheduler {
	s := kthread.NewScheduler(kthread.Config{Policy: policy})
	s.Start()
	return s
}
