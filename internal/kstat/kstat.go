// Package kstat wraps the small slice of gonum's stat and floats
// packages this module's tests lean on to check MLFQS convergence
// (load_avg settling near its steady-state value, recent_cpu decay
// tracking the expected exponential curve) without hand-rolling mean/
// variance/closeness helpers the way a stdlib-only test suite would.
package kstat

import (
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of samples, or 0 for an empty slice.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// StdDev returns the sample standard deviation of samples.
func StdDev(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	return stat.StdDev(samples, nil)
}

// WithinTolerance reports whether got is within tol of want, the check a
// fixed-point decay assertion needs since MLFQS math only converges
// approximately once rounded to the nearest integer percentage point.
func WithinTolerance(got, want, tol float64) bool {
	return scalar.EqualWithinAbs(got, want, tol)
}

// ConvergesMonotonically reports whether samples move monotonically
// toward target, allowing at most plateauCount consecutive non-improving
// steps — the shape load_avg and recent_cpu decay curves should have
// sample-over-sample as the MLFQS recompute loop runs.
func ConvergesMonotonically(samples []float64, target float64, plateauCount int) bool {
	if len(samples) < 2 {
		return true
	}
	plateau := 0
	prevDist := distance(samples[0], target)
	for _, s := range samples[1:] {
		d := distance(s, target)
		if d > prevDist+1e-9 {
			return false
		}
		if d == prevDist {
			plateau++
			if plateau > plateauCount {
				return false
			}
		} else {
			plateau = 0
		}
		prevDist = d
	}
	return true
}

func distance(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
