package backtest

import "fmt"

// MinBars is the minimum number of bars a run needs to produce a
// statistically meaningful result. Shorter inputs fail fast.
const MinBars = 100

// Config holds the simulation parameters for one backtest run.
type Config struct {
	InitialBalance       float64
	SpreadPips           float64 // synthetic spread around the bar close
	SlippagePips         float64 // upper bound of uniform adverse slippage
	CommissionPerLot     float64 // per 10,000 units
	Leverage             int
	MinTradeIntervalBars int // bars that must elapse between new entries
	WarmupBars           int // bars skipped before the strategy is consulted
	UseTrailingStop      bool
	Seed                 int64 // drives slippage sampling; same seed, same result
}

// DefaultConfig returns the stock simulation parameters.
func DefaultConfig() Config {
	return Config{
		InitialBalance:       1_000_000,
		SpreadPips:           0.3,
		SlippagePips:         0.1,
		CommissionPerLot:     0,
		Leverage:             25,
		MinTradeIntervalBars: 1,
		WarmupBars:           50,
		Seed:                 1,
	}
}

// Validate rejects unusable simulation parameters at construction time.
func (c Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("backtest config: initial balance must be positive, got %.2f", c.InitialBalance)
	}
	if c.SpreadPips < 0 || c.SlippagePips < 0 || c.CommissionPerLot < 0 {
		return fmt.Errorf("backtest config: spread, slippage and commission must be non-negative")
	}
	if c.Leverage <= 0 {
		return fmt.Errorf("backtest config: leverage must be positive, got %d", c.Leverage)
	}
	if c.MinTradeIntervalBars < 0 || c.WarmupBars < 0 {
		return fmt.Errorf("backtest config: bar intervals must be non-negative")
	}
	return nil
}
