package indicators

import "math"

// SMA computes the simple moving average over the given period.
func SMA(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("sma", period); err != nil {
		return nil, err
	}
	out := nanSlice(len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA computes the exponential moving average with smoothing factor
// 2/(period+1), seeded by the first value in the series.
func EMA(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("ema", period); err != nil {
		return nil, err
	}
	out := nanSlice(len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out, nil
}

// WMA computes the linearly weighted moving average: the most recent value
// carries weight period, the oldest weight 1.
func WMA(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("wma", period); err != nil {
		return nil, err
	}
	out := nanSlice(len(values))
	denom := float64(period*(period+1)) / 2
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += values[i-period+1+j] * float64(j+1)
		}
		out[i] = sum / denom
	}
	return out, nil
}

// rollingMax returns the rolling maximum over the given window.
func rollingMax(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		m := math.Inf(-1)
		for j := i - period + 1; j <= i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

// rollingMin returns the rolling minimum over the given window.
func rollingMin(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		m := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if values[j] < m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}
