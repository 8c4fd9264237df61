//go:build kthread_debug

package kthread

// debugDonationCycles asserts that a donation walk never revisits a
// thread — cheap insurance in debug builds for the acyclicity Design
// Notes #4 says the design otherwise just assumes.
const debugDonationCycles = true
