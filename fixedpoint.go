package kthread

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// FixedPoint is a 17.14 signed fixed-point number (C1), the representation
// the MLFQS math (§4.7) is required to use so that recent_cpu and load_avg
// never touch a float. The type itself mirrors the teacher's habit of
// wrapping a bare numeric in a named type with a String() method
// (utils.go's Tftick), generalized from a float64 wrapper to the integer
// fixed-point layout the spec actually mandates.
type FixedPoint int32

const (
	fixedPointFractionBits = 14
	fixedPointOne          = FixedPoint(1) << fixedPointFractionBits
)

// FixedFromInt converts a whole number into 17.14 fixed-point.
func FixedFromInt(n int) FixedPoint {
	return FixedPoint(n) * fixedPointOne
}

// FixedFromFloat64 converts a float into 17.14 fixed-point. Used only at
// the boundary (test assertions, diagnostics) — production math stays in
// FixedPoint end to end.
func FixedFromFloat64(v float64) FixedPoint {
	return FixedPoint(v * float64(fixedPointOne))
}

func (f FixedPoint) Add(o FixedPoint) FixedPoint    { return f + o }
func (f FixedPoint) Sub(o FixedPoint) FixedPoint    { return f - o }
func (f FixedPoint) AddInt(n int) FixedPoint        { return f + FixedFromInt(n) }
func (f FixedPoint) SubInt(n int) FixedPoint        { return f - FixedFromInt(n) }
func (f FixedPoint) MulInt(n int) FixedPoint        { return f * FixedPoint(n) }
func (f FixedPoint) DivInt(n int) FixedPoint        { return f / FixedPoint(n) }

// Mul multiplies two fixed-point values, widening to int64 so the
// intermediate product doesn't overflow before the shift back down.
func (f FixedPoint) Mul(o FixedPoint) FixedPoint {
	return FixedPoint((int64(f) * int64(o)) >> fixedPointFractionBits)
}

// Div divides two fixed-point values, widening the dividend before the
// shift so fractional precision survives the integer division.
func (f FixedPoint) Div(o FixedPoint) FixedPoint {
	return FixedPoint((int64(f) << fixedPointFractionBits) / int64(o))
}

// Round returns the nearest integer, rounding half away from zero —
// the convention the spec's MLFQS formulas assume for recent_cpu/load_avg.
func (f FixedPoint) Round() int {
	if f >= 0 {
		return int((f + fixedPointOne/2) >> fixedPointFractionBits)
	}
	return int((f - fixedPointOne/2) / fixedPointOne)
}

// Truncate returns the integer part, discarding the fraction.
func (f FixedPoint) Truncate() int {
	return int(f / fixedPointOne)
}

// Float64 is for diagnostics and test assertions only.
func (f FixedPoint) Float64() float64 {
	return float64(f) / float64(fixedPointOne)
}

func (f FixedPoint) String() string {
	return fmt.Sprintf("%.3ffp", f.Float64())
}

// clamp is the generic range-clamp shared by priority and nice validation,
// grounded on utils.go's generic Number constraint — reused directly here
// rather than re-declared, the way a teacher's own helper gets pulled into
// a new file instead of copy-pasted.
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
