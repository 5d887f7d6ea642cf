package indicators

import (
	"math"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// TrueRange computes the per-bar true range: the greatest of high-low,
// |high - prevClose| and |low - prevClose|. The first bar has no previous
// close and is NaN.
func TrueRange(bars []types.Bar) []float64 {
	out := nanSlice(len(bars))
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the average true range as a rolling mean of the true range.
func ATR(bars []types.Bar, period int) ([]float64, error) {
	if err := validatePeriod("atr", period); err != nil {
		return nil, err
	}
	tr := TrueRange(bars)
	out := nanSlice(len(bars))
	// TR starts at index 1, so the first full window ends at index period.
	for i := period; i < len(bars); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += tr[j]
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}
