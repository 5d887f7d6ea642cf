package indicators

import "github.com/esuzuk/fx-backtest/pkg/types"

// OBV computes on-balance volume: the cumulative sum of volume signed by the
// direction of the close-to-close change.
func OBV(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		out[i] = out[i-1]
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			out[i] -= bars[i].Volume
		}
	}
	return out
}

// VWAP computes the cumulative volume-weighted average price over the
// typical price (high+low+close)/3. Indices before any volume has traded
// are NaN.
func VWAP(bars []types.Bar) []float64 {
	out := nanSlice(len(bars))
	var cumPV, cumVol float64
	for i, b := range bars {
		tp := (b.High + b.Low + b.Close) / 3
		cumPV += tp * b.Volume
		cumVol += b.Volume
		if cumVol > 0 {
			out[i] = cumPV / cumVol
		}
	}
	return out
}
