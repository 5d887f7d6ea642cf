package indicators

import (
	"math"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// StochasticResult holds the %K and %D series.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes the stochastic oscillator: %K is the close position
// within the rolling high/low range, %D is an SMA of %K.
func Stochastic(bars []types.Bar, kPeriod, dPeriod int) (*StochasticResult, error) {
	if err := validatePeriod("stochastic", kPeriod); err != nil {
		return nil, err
	}
	if err := validatePeriod("stochastic", dPeriod); err != nil {
		return nil, err
	}
	n := len(bars)
	k := nanSlice(n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}
	hh := rollingMax(highs, kPeriod)
	ll := rollingMin(lows, kPeriod)
	for i := kPeriod - 1; i < n; i++ {
		if r := hh[i] - ll[i]; r != 0 {
			k[i] = 100 * (bars[i].Close - ll[i]) / r
		} else {
			k[i] = 50
		}
	}
	// SMA skips NaN warm-up by operating on the defined tail only.
	d := nanSlice(n)
	if defined := n - (kPeriod - 1); defined >= dPeriod {
		tail, err := SMA(k[kPeriod-1:], dPeriod)
		if err != nil {
			return nil, err
		}
		copy(d[kPeriod-1:], tail)
	}
	return &StochasticResult{K: k, D: d}, nil
}

// CCI computes the commodity channel index over the typical price
// (high+low+close)/3, scaled by 0.015 times the mean absolute deviation.
func CCI(bars []types.Bar, period int) ([]float64, error) {
	if err := validatePeriod("cci", period); err != nil {
		return nil, err
	}
	n := len(bars)
	tp := make([]float64, n)
	for i, b := range bars {
		tp[i] = (b.High + b.Low + b.Close) / 3
	}
	sma, err := SMA(tp, period)
	if err != nil {
		return nil, err
	}
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - sma[i])
		}
		mad /= float64(period)
		if mad != 0 {
			out[i] = (tp[i] - sma[i]) / (0.015 * mad)
		} else {
			out[i] = 0
		}
	}
	return out, nil
}

// WilliamsR computes Williams %R, ranging from -100 (close at the rolling
// low) to 0 (close at the rolling high).
func WilliamsR(bars []types.Bar, period int) ([]float64, error) {
	if err := validatePeriod("williams %r", period); err != nil {
		return nil, err
	}
	n := len(bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}
	hh := rollingMax(highs, period)
	ll := rollingMin(lows, period)
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		if r := hh[i] - ll[i]; r != 0 {
			out[i] = -100 * (hh[i] - bars[i].Close) / r
		} else {
			out[i] = -50
		}
	}
	return out, nil
}
