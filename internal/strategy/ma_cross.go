package strategy

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/internal/indicators"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// MovingAverageCross trades golden/dead crosses of two simple moving
// averages. Confidence scales with the normalized separation of the averages
// at the cross; stops and targets are 2x/4x ATR from entry.
type MovingAverageCross struct {
	shortPeriod int
	longPeriod  int
}

// NewMovingAverageCross validates the periods at construction time.
func NewMovingAverageCross(shortPeriod, longPeriod int) (*MovingAverageCross, error) {
	if shortPeriod <= 0 || longPeriod <= 0 {
		return nil, fmt.Errorf("ma cross: periods must be positive, got %d/%d", shortPeriod, longPeriod)
	}
	if shortPeriod >= longPeriod {
		return nil, fmt.Errorf("ma cross: short period %d must be less than long period %d", shortPeriod, longPeriod)
	}
	return &MovingAverageCross{shortPeriod: shortPeriod, longPeriod: longPeriod}, nil
}

func (s *MovingAverageCross) Name() string { return "MovingAverageCross" }

func (s *MovingAverageCross) WarmupBars() int { return s.longPeriod + 1 }

func (s *MovingAverageCross) GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal {
	ts := signalTime(bars, tick)
	if len(bars) < s.WarmupBars() {
		return neutral(s.Name(), pair, ts, reasonInsufficientData, nil)
	}

	closes := indicators.Closes(bars)
	shortMA, _ := indicators.SMA(closes, s.shortPeriod)
	longMA, _ := indicators.SMA(closes, s.longPeriod)

	last := len(bars) - 1
	curShort, curLong := shortMA[last], longMA[last]
	prevShort, prevLong := shortMA[last-1], longMA[last-1]
	meta := map[string]float64{"short_ma": curShort, "long_ma": curLong}

	entry := closes[last]
	atr := latestATR(bars)

	// Golden cross: short crosses above long.
	if prevShort <= prevLong && curShort > curLong {
		confidence := math.Min(math.Abs(curShort-curLong)/curLong*100, 1.0)
		stop, target := atrBrackets(entry, atr, types.Buy, 2, 4)
		return Signal{
			Type:         BuySignal,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   confidence,
			EntryPrice:   entry,
			StopLoss:     stop,
			TakeProfit:   target,
			StrategyName: s.Name(),
			Reason:       fmt.Sprintf("golden cross (SMA%d > SMA%d)", s.shortPeriod, s.longPeriod),
			Metadata:     meta,
		}
	}

	// Dead cross: short crosses below long.
	if prevShort >= prevLong && curShort < curLong {
		confidence := math.Min(math.Abs(curLong-curShort)/curLong*100, 1.0)
		stop, target := atrBrackets(entry, atr, types.Sell, 2, 4)
		return Signal{
			Type:         SellSignal,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   confidence,
			EntryPrice:   entry,
			StopLoss:     stop,
			TakeProfit:   target,
			StrategyName: s.Name(),
			Reason:       fmt.Sprintf("dead cross (SMA%d < SMA%d)", s.shortPeriod, s.longPeriod),
			Metadata:     meta,
		}
	}

	return neutral(s.Name(), pair, ts, "no crossover", meta)
}
