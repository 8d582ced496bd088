// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundTo rounds a value to the given number of decimal places.
func RoundTo(val float64, places int) float64 {
	if places <= 0 {
		return math.Round(val)
	}
	scale := math.Pow(10, float64(places))
	return math.Round(val*scale) / scale
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp bounds val to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

// SafeDivide divides num by den. The second return is false when den is zero
// or the quotient is not finite.
func SafeDivide(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	q := num / den
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}

// Sum returns the sum of values; zero for an empty slice.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// Mean returns the arithmetic mean of values; zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
