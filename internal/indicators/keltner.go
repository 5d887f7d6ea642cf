package indicators

import (
	"math"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// KeltnerResult holds the three Keltner Channel series.
type KeltnerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// KeltnerChannel computes an EMA middle line with bands at multiplier times
// the ATR above and below it.
func KeltnerChannel(bars []types.Bar, emaPeriod, atrPeriod int, multiplier float64) (*KeltnerResult, error) {
	middle, err := EMA(Closes(bars), emaPeriod)
	if err != nil {
		return nil, err
	}
	atr, err := ATR(bars, atrPeriod)
	if err != nil {
		return nil, err
	}
	n := len(bars)
	upper := nanSlice(n)
	lower := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) {
			continue
		}
		upper[i] = middle[i] + atr[i]*multiplier
		lower[i] = middle[i] - atr[i]*multiplier
	}
	return &KeltnerResult{Upper: upper, Middle: middle, Lower: lower}, nil
}
