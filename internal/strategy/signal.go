package strategy

import (
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// SignalType is the closed set of signal directions a strategy can emit.
type SignalType int

const (
	StrongBuy SignalType = iota
	BuySignal
	WeakBuy
	Neutral
	WeakSell
	SellSignal
	StrongSell
)

func (s SignalType) String() string {
	switch s {
	case StrongBuy:
		return "strong_buy"
	case BuySignal:
		return "buy"
	case WeakBuy:
		return "weak_buy"
	case Neutral:
		return "neutral"
	case WeakSell:
		return "weak_sell"
	case SellSignal:
		return "sell"
	case StrongSell:
		return "strong_sell"
	default:
		return "unknown"
	}
}

// IsBuy reports whether the signal is any of the buy variants.
func (s SignalType) IsBuy() bool {
	return s == StrongBuy || s == BuySignal || s == WeakBuy
}

// IsSell reports whether the signal is any of the sell variants.
func (s SignalType) IsSell() bool {
	return s == StrongSell || s == SellSignal || s == WeakSell
}

// Signal is a trading signal produced by a strategy. Entry, stop and target
// prices are 0 when the strategy did not suggest them.
type Signal struct {
	Type         SignalType
	Pair         types.CurrencyPair
	Timestamp    time.Time
	Confidence   float64 // 0.0 - 1.0
	EntryPrice   float64
	StopLoss     float64
	TakeProfit   float64
	StrategyName string
	Reason       string
	Metadata     map[string]float64
}

// OrderSide maps the signal direction to an order side. ok is false for
// neutral signals.
func (s Signal) OrderSide() (side types.OrderSide, ok bool) {
	switch {
	case s.Type.IsBuy():
		return types.Buy, true
	case s.Type.IsSell():
		return types.Sell, true
	default:
		return 0, false
	}
}

// neutral builds the reason-only signal every generator falls back to.
func neutral(name string, pair types.CurrencyPair, ts time.Time, reason string, meta map[string]float64) Signal {
	return Signal{
		Type:         Neutral,
		Pair:         pair,
		Timestamp:    ts,
		StrategyName: name,
		Reason:       reason,
		Metadata:     meta,
	}
}

const reasonInsufficientData = "insufficient data"

// signalTime picks the signal timestamp: the current tick when present,
// otherwise the latest bar. Keeps replays deterministic (no wall clock).
func signalTime(bars []types.Bar, tick *types.Tick) time.Time {
	if tick != nil {
		return tick.Timestamp
	}
	if len(bars) > 0 {
		return bars[len(bars)-1].Timestamp
	}
	return time.Time{}
}
