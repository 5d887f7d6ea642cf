package strategy

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/internal/indicators"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// RSIMeanReversion fades overbought/oversold RSI readings. When RSI has
// already turned back toward the mean the signal is a full buy/sell;
// otherwise a weak variant with reduced confidence.
type RSIMeanReversion struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIMeanReversion validates the period and threshold ordering.
func NewRSIMeanReversion(period int, oversold, overbought float64) (*RSIMeanReversion, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi reversion: period must be positive, got %d", period)
	}
	if oversold <= 0 || overbought >= 100 || oversold >= overbought {
		return nil, fmt.Errorf("rsi reversion: thresholds must satisfy 0 < oversold < overbought < 100, got %.1f/%.1f", oversold, overbought)
	}
	return &RSIMeanReversion{period: period, oversold: oversold, overbought: overbought}, nil
}

func (s *RSIMeanReversion) Name() string { return "RSIMeanReversion" }

func (s *RSIMeanReversion) WarmupBars() int {
	// One extra bar so a previous RSI value exists for the slope check.
	if s.period+2 > atrPeriod+1 {
		return s.period + 2
	}
	return atrPeriod + 1
}

func (s *RSIMeanReversion) GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal {
	ts := signalTime(bars, tick)
	if len(bars) < s.WarmupBars() {
		return neutral(s.Name(), pair, ts, reasonInsufficientData, nil)
	}

	closes := indicators.Closes(bars)
	rsi, _ := indicators.RSI(closes, s.period)
	last := len(bars) - 1
	current, prev := rsi[last], rsi[last-1]
	meta := map[string]float64{"rsi": current}

	entry := closes[last]
	atr := latestATR(bars)

	if current < s.oversold {
		signalType := WeakBuy
		confidence := (s.oversold - current) / s.oversold * 0.7
		if current > prev { // RSI turning up strengthens the reversal case
			signalType = BuySignal
			confidence = (s.oversold - current) / s.oversold
		}
		stop, target := atrBrackets(entry, atr, types.Buy, 2, 3)
		return Signal{
			Type:         signalType,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   math.Min(confidence, 1.0),
			EntryPrice:   entry,
			StopLoss:     stop,
			TakeProfit:   target,
			StrategyName: s.Name(),
			Reason:       fmt.Sprintf("RSI oversold (RSI=%.1f)", current),
			Metadata:     meta,
		}
	}

	if current > s.overbought {
		signalType := WeakSell
		confidence := (current - s.overbought) / (100 - s.overbought) * 0.7
		if current < prev {
			signalType = SellSignal
			confidence = (current - s.overbought) / (100 - s.overbought)
		}
		stop, target := atrBrackets(entry, atr, types.Sell, 2, 3)
		return Signal{
			Type:         signalType,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   math.Min(confidence, 1.0),
			EntryPrice:   entry,
			StopLoss:     stop,
			TakeProfit:   target,
			StrategyName: s.Name(),
			Reason:       fmt.Sprintf("RSI overbought (RSI=%.1f)", current),
			Metadata:     meta,
		}
	}

	return neutral(s.Name(), pair, ts, fmt.Sprintf("RSI neutral (RSI=%.1f)", current), meta)
}
