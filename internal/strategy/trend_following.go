package strategy

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/internal/indicators"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// TrendFollowing only trades when ADX confirms a trend. Direction comes from
// the dominant directional indicator, confirmed by price relative to a long
// SMA; confidence scales with ADX above the threshold.
type TrendFollowing struct {
	adxPeriod    int
	adxThreshold float64
	maPeriod     int
}

// NewTrendFollowing validates the periods and threshold.
func NewTrendFollowing(adxPeriod int, adxThreshold float64, maPeriod int) (*TrendFollowing, error) {
	if adxPeriod <= 0 || maPeriod <= 0 {
		return nil, fmt.Errorf("trend following: periods must be positive, got %d/%d", adxPeriod, maPeriod)
	}
	if adxThreshold <= 0 || adxThreshold >= 100 {
		return nil, fmt.Errorf("trend following: ADX threshold must be in (0, 100), got %.1f", adxThreshold)
	}
	return &TrendFollowing{adxPeriod: adxPeriod, adxThreshold: adxThreshold, maPeriod: maPeriod}, nil
}

func (s *TrendFollowing) Name() string { return "TrendFollowing" }

func (s *TrendFollowing) WarmupBars() int {
	// ADX needs two full periods of data before its first value.
	w := s.adxPeriod * 2
	if s.maPeriod > w {
		w = s.maPeriod
	}
	return w + 1
}

func (s *TrendFollowing) GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal {
	ts := signalTime(bars, tick)
	if len(bars) < s.WarmupBars() {
		return neutral(s.Name(), pair, ts, reasonInsufficientData, nil)
	}

	closes := indicators.Closes(bars)
	adx, _ := indicators.ADX(bars, s.adxPeriod)
	ma, _ := indicators.SMA(closes, s.maPeriod)

	last := len(bars) - 1
	curADX := adx.ADX[last]
	plusDI := adx.PlusDI[last]
	minusDI := adx.MinusDI[last]
	curMA := ma[last]
	close := closes[last]
	meta := map[string]float64{"adx": curADX, "plus_di": plusDI, "minus_di": minusDI}

	if math.IsNaN(curADX) || curADX < s.adxThreshold {
		return neutral(s.Name(), pair, ts, fmt.Sprintf("weak trend (ADX=%.1f)", curADX), meta)
	}

	confidence := math.Min((curADX-s.adxThreshold)/25+0.5, 1.0)
	entry := close
	atr := latestATR(bars)

	if plusDI > minusDI && close > curMA {
		signalType := BuySignal
		if curADX > 40 {
			signalType = StrongBuy
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
			Reason:       fmt.Sprintf("uptrend confirmed (ADX=%.1f, +DI=%.1f)", curADX, plusDI),
			Metadata:     meta,
		}
	}

	if minusDI > plusDI && close < curMA {
		signalType := SellSignal
		if curADX > 40 {
			signalType = StrongSell
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
			Reason:       fmt.Sprintf("downtrend confirmed (ADX=%.1f, -DI=%.1f)", curADX, minusDI),
			Metadata:     meta,
		}
	}

	return neutral(s.Name(), pair, ts, "trend direction unclear", meta)
}
