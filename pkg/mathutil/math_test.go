package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		places   int
		expected float64
	}{
		{"One decimal", 83.04, 1, 83.0},
		{"Two decimals", 16.9877, 2, 16.99},
		{"Zero places", 2.6, 0, 3},
		{"Negative places treated as zero", 2.4, -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundTo(tt.input, tt.places)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("RoundTo(%v, %d) = %v, expected %v", tt.input, tt.places, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 1.0, 1.0, 0.1, true},
		{"Within tolerance", 1.0, 1.05, 0.1, true},
		{"Outside tolerance", 1.0, 1.15, 0.1, false},
		{"Zero tolerance no match", 1.0, 1.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := WithinTolerance(tt.val1, tt.val2, tt.tolerance); result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0.99, 0.02, 0.98); got != 0.98 {
		t.Errorf("Clamp above = %v, expected 0.98", got)
	}
	if got := Clamp(0.01, 0.02, 0.50); got != 0.02 {
		t.Errorf("Clamp below = %v, expected 0.02", got)
	}
	if got := Clamp(0.3, 0.02, 0.50); got != 0.3 {
		t.Errorf("Clamp inside = %v, expected 0.3", got)
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name     string
		num      float64
		den      float64
		expected float64
		ok       bool
	}{
		{"Regular", 10, 4, 2.5, true},
		{"Zero denominator", 10, 0, 0, false},
		{"Zero over zero", 0, 0, 0, false},
		{"Negative over negative", -10, -5, 2, true},
		{"Infinite numerator", math.Inf(1), 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := SafeDivide(tt.num, tt.den)
			if ok != tt.ok || result != tt.expected {
				t.Errorf("SafeDivide(%v, %v) = (%v, %v), expected (%v, %v)",
					tt.num, tt.den, result, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestSumAndMean(t *testing.T) {
	weights := []float64{0.20, 0.35, 0.25, 0.15, 0.05}
	if got := Sum(weights); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Sum(weights) = %v, expected 1.0", got)
	}
	if got := Mean([]float64{3, 8}); got != 5.5 {
		t.Errorf("Mean(3, 8) = %v, expected 5.5", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, expected 0", got)
	}
	if got := Sum(nil); got != 0 {
		t.Errorf("Sum(nil) = %v, expected 0", got)
	}
}
