//go:build !kthread_debug

package kthread

// debugDonationCycles is off by default; build with -tags kthread_debug
// to pay for the cycle check on every donation walk (Design Notes #4).
const debugDonationCycles = false
