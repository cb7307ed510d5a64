// Package fixedpoint provides the deterministic scaled-integer arithmetic
// used for all amount computation. No floating point is involved anywhere,
// so results are identical across platforms and runs.
package fixedpoint

import (
	"errors"
	"math/bits"
)

var (
	ErrOverflow       = errors.New("fixedpoint: result overflows 64 bits")
	ErrUnderflow      = errors.New("fixedpoint: result underflows zero")
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
)

// MulDiv computes floor(a*b/c) with a full 128-bit intermediate product, so
// a*b may exceed 64 bits as long as the quotient fits. Truncation toward zero
// is deliberate: a vested claim is always rounded down, never up.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(a, b)
	// bits.Div64 panics when the quotient does not fit in 64 bits.
	if hi >= c {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}

// CheckedAdd returns a+b, failing instead of wrapping on overflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b, failing instead of wrapping when b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi uint64) uint64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
