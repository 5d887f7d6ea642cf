package indicators

import "fmt"

// MACDResult holds the three MACD output series.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence/divergence: the difference of
// a fast and slow EMA, its own EMA as the signal line, and histogram =
// line - signal.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (*MACDResult, error) {
	if err := validatePeriod("macd", fastPeriod); err != nil {
		return nil, err
	}
	if err := validatePeriod("macd", slowPeriod); err != nil {
		return nil, err
	}
	if err := validatePeriod("macd", signalPeriod); err != nil {
		return nil, err
	}
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("macd: fast period %d must be less than slow period %d", fastPeriod, slowPeriod)
	}

	fast, err := EMA(values, fastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := EMA(values, slowPeriod)
	if err != nil {
		return nil, err
	}

	line := make([]float64, len(values))
	for i := range values {
		line[i] = fast[i] - slow[i]
	}
	signal, err := EMA(line, signalPeriod)
	if err != nil {
		return nil, err
	}
	hist := make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - signal[i]
	}

	return &MACDResult{Line: line, Signal: signal, Histogram: hist}, nil
}
