package strategy

import (
	"fmt"

	"github.com/esuzuk/fx-backtest/internal/indicators"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// MACDCross trades MACD/signal-line crossovers. A cross on the trend side of
// the zero line (line above zero for buys, below for sells) is a trend
// continuation and yields the strong variant.
type MACDCross struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACDCross validates the period ordering.
func NewMACDCross(fastPeriod, slowPeriod, signalPeriod int) (*MACDCross, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return nil, fmt.Errorf("macd cross: periods must be positive, got %d/%d/%d", fastPeriod, slowPeriod, signalPeriod)
	}
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("macd cross: fast period %d must be less than slow period %d", fastPeriod, slowPeriod)
	}
	return &MACDCross{fastPeriod: fastPeriod, slowPeriod: slowPeriod, signalPeriod: signalPeriod}, nil
}

func (s *MACDCross) Name() string { return "MACDCross" }

func (s *MACDCross) WarmupBars() int { return s.slowPeriod + s.signalPeriod + 1 }

func (s *MACDCross) GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal {
	ts := signalTime(bars, tick)
	if len(bars) < s.WarmupBars() {
		return neutral(s.Name(), pair, ts, reasonInsufficientData, nil)
	}

	closes := indicators.Closes(bars)
	macd, err := indicators.MACD(closes, s.fastPeriod, s.slowPeriod, s.signalPeriod)
	if err != nil {
		return neutral(s.Name(), pair, ts, err.Error(), nil)
	}

	last := len(bars) - 1
	curLine, curSignal := macd.Line[last], macd.Signal[last]
	prevLine, prevSignal := macd.Line[last-1], macd.Signal[last-1]
	meta := map[string]float64{
		"macd":      curLine,
		"signal":    curSignal,
		"histogram": macd.Histogram[last],
	}

	entry := closes[last]
	atr := latestATR(bars)

	if prevLine <= prevSignal && curLine > curSignal {
		signalType, confidence := BuySignal, 0.6
		if curLine > 0 { // continuation cross above the zero line
			signalType, confidence = StrongBuy, 0.8
		}
		stop, target := atrBrackets(entry, atr, types.Buy, 2, 4)
		return Signal{
			Type:         signalType,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   confidence,
			EntryPrice:   entry,
			StopLoss:     stop,
			TakeProfit:   target,
			StrategyName: s.Name(),
			Reason:       "MACD bullish crossover",
			Metadata:     meta,
		}
	}

	if prevLine >= prevSignal && curLine < curSignal {
		signalType, confidence := SellSignal, 0.6
		if curLine < 0 {
			signalType, confidence = StrongSell, 0.8
		}
		stop, target := atrBrackets(entry, atr, types.Sell, 2, 4)
		return Signal{
			Type:         signalType,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   confidence,
			EntryPrice:   entry,
			StopLoss:     stop,
			TakeProfit:   target,
			StrategyName: s.Name(),
			Reason:       "MACD bearish crossover",
			Metadata:     meta,
		}
	}

	return neutral(s.Name(), pair, ts, "no MACD crossover", meta)
}
