package indicators

import "math"

// BollingerResult holds the three Bollinger Band series.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands computes an SMA middle band with upper/lower bands at
// stdDev population standard deviations from it.
func BollingerBands(values []float64, period int, stdDev float64) (*BollingerResult, error) {
	middle, err := SMA(values, period)
	if err != nil {
		return nil, err
	}
	upper := nanSlice(len(values))
	lower := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - middle[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + sd*stdDev
		lower[i] = middle[i] - sd*stdDev
	}
	return &BollingerResult{Upper: upper, Middle: middle, Lower: lower}, nil
}
