// Package strategy implements signal-generating trading strategies over
// historical bar series.
package strategy

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/internal/indicators"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Strategy is the capability shared by all signal generators. A strategy
// inspects the price history (oldest first) plus an optional current tick and
// returns a signal; when the history is shorter than the strategy's warm-up
// window it returns a neutral signal with an "insufficient data" reason
// rather than an error.
type Strategy interface {
	GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal
	Name() string
	WarmupBars() int
}

// New builds a strategy by registry name with its default parameters.
func New(name string) (Strategy, error) {
	switch name {
	case "ma_cross":
		return NewMovingAverageCross(20, 50)
	case "rsi_reversal":
		return NewRSIMeanReversion(14, 30, 70)
	case "bollinger":
		return NewBollingerBand(20, 2.0)
	case "macd":
		return NewMACDCross(12, 26, 9)
	case "trend_following":
		return NewTrendFollowing(14, 25, 50)
	case "combined":
		return NewCombinedDefault(2)
	default:
		return nil, fmt.Errorf("unknown strategy %q (available: ma_cross, rsi_reversal, bollinger, macd, trend_following, combined)", name)
	}
}

// atrPeriod is the fixed lookback used for ATR-derived stops and targets.
const atrPeriod = 14

// latestATR returns the most recent defined ATR value, or 0 when the series
// is still warming up. A zero ATR suppresses ATR-derived brackets; the risk
// manager then falls back to fixed-pip defaults.
func latestATR(bars []types.Bar) float64 {
	atr, err := indicators.ATR(bars, atrPeriod)
	if err != nil {
		return 0
	}
	v := indicators.LastValid(atr)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// atrBrackets returns a stop and target at the given ATR multiples from
// entry. A zero ATR (history shorter than the ATR lookback) returns zero
// brackets; the risk manager then substitutes its fixed-pip defaults instead
// of placing a stop at the entry price.
func atrBrackets(entry, atr float64, side types.OrderSide, stopMult, targetMult float64) (stop, target float64) {
	if atr <= 0 {
		return 0, 0
	}
	if side == types.Buy {
		return entry - atr*stopMult, entry + atr*targetMult
	}
	return entry + atr*stopMult, entry - atr*targetMult
}
