// Package indicators provides stateless technical indicator calculations.
//
// Every function transforms a price series into an output series of equal
// length, aligned index-for-index with the input. Indices inside the warm-up
// window (the first period-1 points, or more for compound indicators) hold
// math.NaN. Callers detect warm-up with math.IsNaN rather than by offset
// arithmetic.
package indicators

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Closes extracts the close price series from a bar slice.
func Closes(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// nanSlice returns a slice of n NaN values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// validatePeriod rejects non-positive lookback periods at call time.
func validatePeriod(name string, period int) error {
	if period <= 0 {
		return fmt.Errorf("%s: period must be positive, got %d", name, period)
	}
	return nil
}

// LastValid returns the last non-NaN value in the series, or NaN when the
// whole series is still inside its warm-up window.
func LastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i]
		}
	}
	return math.NaN()
}
