package indicators

import "github.com/esuzuk/fx-backtest/pkg/types"

// PivotResult holds classic pivot point levels derived from the prior bar.
type PivotResult struct {
	Pivot []float64
	R1    []float64
	R2    []float64
	S1    []float64
	S2    []float64
}

// PivotPoints computes classic pivot levels for each bar from the previous
// bar's high, low and close. The first bar has no prior bar and is NaN.
func PivotPoints(bars []types.Bar) *PivotResult {
	n := len(bars)
	res := &PivotResult{
		Pivot: nanSlice(n),
		R1:    nanSlice(n),
		R2:    nanSlice(n),
		S1:    nanSlice(n),
		S2:    nanSlice(n),
	}
	for i := 1; i < n; i++ {
		prev := bars[i-1]
		p := (prev.High + prev.Low + prev.Close) / 3
		res.Pivot[i] = p
		res.R1[i] = 2*p - prev.Low
		res.S1[i] = 2*p - prev.High
		res.R2[i] = p + (prev.High - prev.Low)
		res.S2[i] = p - (prev.High - prev.Low)
	}
	return res
}
