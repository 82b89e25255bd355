// Package sigfig rounds and compares numbers at a number of significant
// figures. The solver never rounds; callers use this to format or compare
// its results.
package sigfig

import (
	"math"
	"strconv"
)

// Round returns v rounded to n significant figures, halves away from zero.
// n below 1 is treated as 1. Zero, NaN and infinities are returned as they
// are.
func Round(v float64, n int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if n < 1 {
		n = 1
	}
	digits := n - int(math.Floor(math.Log10(math.Abs(v)))) - 1
	if digits >= 0 {
		p := math.Pow(10, float64(digits))
		return math.Round(v*p) / p
	}
	p := math.Pow(10, float64(-digits))
	return math.Round(v/p) * p
}

// Equal reports whether a and b agree to n significant figures.
func Equal(a, b float64, n int) bool {
	return Round(a, n) == Round(b, n)
}

// Format renders v rounded to n significant figures, without exponent.
func Format(v float64, n int) string {
	return strconv.FormatFloat(Round(v, n), 'f', -1, 64)
}
