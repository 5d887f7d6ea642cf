package indicators

import (
	"math"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// ADXResult holds the directional movement output series.
type ADXResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX computes the average directional index and the +DI/-DI lines using
// Wilder smoothing of the true range and directional movement. +DI and -DI
// become defined at index period; ADX needs a further period of DX values
// and becomes defined at index 2*period-1.
func ADX(bars []types.Bar, period int) (*ADXResult, error) {
	if err := validatePeriod("adx", period); err != nil {
		return nil, err
	}
	n := len(bars)
	res := &ADXResult{
		ADX:     nanSlice(n),
		PlusDI:  nanSlice(n),
		MinusDI: nanSlice(n),
	}
	if n < period+1 {
		return res, nil
	}

	tr := TrueRange(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// Wilder smoothing: seed with the plain sum of the first period values,
	// then smoothed = prev - prev/period + current.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(n)
	for i := period; i < n; i++ {
		if i > period {
			smTR = smTR - smTR/float64(period) + tr[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}
		if smTR == 0 {
			continue
		}
		pdi := 100 * smPlus / smTR
		mdi := 100 * smMinus / smTR
		res.PlusDI[i] = pdi
		res.MinusDI[i] = mdi
		if sum := pdi + mdi; sum != 0 {
			dx[i] = 100 * math.Abs(pdi-mdi) / sum
		} else {
			dx[i] = 0
		}
	}

	// ADX seeds as the simple mean of the first period DX values, then
	// follows Wilder's recursion.
	first := 2*period - 1
	if first >= n {
		return res, nil
	}
	sum := 0.0
	for i := period; i <= first; i++ {
		if math.IsNaN(dx[i]) {
			return res, nil
		}
		sum += dx[i]
	}
	res.ADX[first] = sum / float64(period)
	for i := first + 1; i < n; i++ {
		if math.IsNaN(dx[i]) {
			res.ADX[i] = res.ADX[i-1]
			continue
		}
		res.ADX[i] = (res.ADX[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return res, nil
}
