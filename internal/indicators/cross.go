package indicators

import "math"

// CrossAbove reports, per index, whether series a crossed above series b
// between the previous bar and this one. NaN values never cross.
func CrossAbove(a, b []float64) []bool {
	out := make([]bool, len(a))
	for i := 1; i < len(a) && i < len(b); i++ {
		if anyNaN(a[i-1], b[i-1], a[i], b[i]) {
			continue
		}
		out[i] = a[i-1] <= b[i-1] && a[i] > b[i]
	}
	return out
}

// CrossBelow reports, per index, whether series a crossed below series b
// between the previous bar and this one.
func CrossBelow(a, b []float64) []bool {
	out := make([]bool, len(a))
	for i := 1; i < len(a) && i < len(b); i++ {
		if anyNaN(a[i-1], b[i-1], a[i], b[i]) {
			continue
		}
		out[i] = a[i-1] >= b[i-1] && a[i] < b[i]
	}
	return out
}

// GoldenCross flags bars where the short SMA crosses above the long SMA.
func GoldenCross(values []float64, shortPeriod, longPeriod int) ([]bool, error) {
	shortMA, longMA, err := maPair(values, shortPeriod, longPeriod)
	if err != nil {
		return nil, err
	}
	return CrossAbove(shortMA, longMA), nil
}

// DeadCross flags bars where the short SMA crosses below the long SMA.
func DeadCross(values []float64, shortPeriod, longPeriod int) ([]bool, error) {
	shortMA, longMA, err := maPair(values, shortPeriod, longPeriod)
	if err != nil {
		return nil, err
	}
	return CrossBelow(shortMA, longMA), nil
}

func maPair(values []float64, shortPeriod, longPeriod int) ([]float64, []float64, error) {
	shortMA, err := SMA(values, shortPeriod)
	if err != nil {
		return nil, nil, err
	}
	longMA, err := SMA(values, longPeriod)
	if err != nil {
		return nil, nil, err
	}
	return shortMA, longMA, nil
}

// BullishDivergence flags bars where price sets a new rolling low while the
// oscillator does not: price below its prior lookback minimum, RSI above its
// prior lookback minimum.
func BullishDivergence(prices []float64, rsiPeriod, lookback int) ([]bool, error) {
	rsi, err := RSI(prices, rsiPeriod)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod("divergence", lookback); err != nil {
		return nil, err
	}
	priceMin := rollingMin(prices, lookback)
	rsiMin := rollingMin(rsi, lookback)
	out := make([]bool, len(prices))
	for i := lookback; i < len(prices); i++ {
		if anyNaN(priceMin[i-1], rsiMin[i-1], rsi[i]) {
			continue
		}
		out[i] = prices[i] < priceMin[i-1] && rsi[i] > rsiMin[i-1]
	}
	return out, nil
}

// BearishDivergence flags bars where price sets a new rolling high while the
// oscillator does not.
func BearishDivergence(prices []float64, rsiPeriod, lookback int) ([]bool, error) {
	rsi, err := RSI(prices, rsiPeriod)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod("divergence", lookback); err != nil {
		return nil, err
	}
	priceMax := rollingMax(prices, lookback)
	rsiMax := rollingMax(rsi, lookback)
	out := make([]bool, len(prices))
	for i := lookback; i < len(prices); i++ {
		if anyNaN(priceMax[i-1], rsiMax[i-1], rsi[i]) {
			continue
		}
		out[i] = prices[i] > priceMax[i-1] && rsi[i] < rsiMax[i-1]
	}
	return out, nil
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
