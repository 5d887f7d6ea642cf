package backtest

import (
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Trade is one simulated position, created at entry and mutated exactly once
// at exit. ExitTime and ExitPrice are either both set or both unset.
type Trade struct {
	ID           int
	Pair         types.CurrencyPair
	Side         types.OrderSide
	EntryTime    time.Time
	EntryPrice   float64
	ExitTime     time.Time
	ExitPrice    float64
	Quantity     int
	StopLoss     float64
	TakeProfit   float64
	PnL          float64
	PnLPips      float64
	ExitReason   string
	StrategyName string
	Confidence   float64
}

// IsClosed reports whether the trade has been exited.
func (t *Trade) IsClosed() bool {
	return !t.ExitTime.IsZero()
}

// IsWinning reports whether the closed trade ended with positive P&L.
func (t *Trade) IsWinning() bool {
	return t.IsClosed() && t.PnL > 0
}

// Duration returns the holding time of a closed trade.
func (t *Trade) Duration() time.Duration {
	if !t.IsClosed() {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime)
}
