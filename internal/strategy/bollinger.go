package strategy

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/internal/indicators"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// BollingerBand fades closes that penetrate the outer bands. Confidence
// scales with penetration depth relative to the band width; the target is
// the mid band, the stop 30% of the band width beyond entry.
type BollingerBand struct {
	period int
	stdDev float64
}

// NewBollingerBand validates the period and deviation multiple.
func NewBollingerBand(period int, stdDev float64) (*BollingerBand, error) {
	if period <= 0 {
		return nil, fmt.Errorf("bollinger: period must be positive, got %d", period)
	}
	if stdDev <= 0 {
		return nil, fmt.Errorf("bollinger: std dev multiple must be positive, got %.2f", stdDev)
	}
	return &BollingerBand{period: period, stdDev: stdDev}, nil
}

func (s *BollingerBand) Name() string { return "BollingerBand" }

func (s *BollingerBand) WarmupBars() int { return s.period + 1 }

func (s *BollingerBand) GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal {
	ts := signalTime(bars, tick)
	if len(bars) < s.WarmupBars() {
		return neutral(s.Name(), pair, ts, reasonInsufficientData, nil)
	}

	closes := indicators.Closes(bars)
	bands, _ := indicators.BollingerBands(closes, s.period, s.stdDev)
	last := len(bars) - 1
	upper, middle, lower := bands.Upper[last], bands.Middle[last], bands.Lower[last]
	meta := map[string]float64{"upper": upper, "middle": middle, "lower": lower}

	close := closes[last]
	bandWidth := upper - lower
	if bandWidth <= 0 {
		return neutral(s.Name(), pair, ts, "degenerate band width", meta)
	}

	if close <= lower {
		penetration := (lower - close) / bandWidth
		return Signal{
			Type:         BuySignal,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   math.Min(0.5+penetration*2, 1.0),
			EntryPrice:   close,
			StopLoss:     close - bandWidth*0.3,
			TakeProfit:   middle,
			StrategyName: s.Name(),
			Reason:       "lower Bollinger band touch",
			Metadata:     meta,
		}
	}

	if close >= upper {
		penetration := (close - upper) / bandWidth
		return Signal{
			Type:         SellSignal,
			Pair:         pair,
			Timestamp:    ts,
			Confidence:   math.Min(0.5+penetration*2, 1.0),
			EntryPrice:   close,
			StopLoss:     close + bandWidth*0.3,
			TakeProfit:   middle,
			StrategyName: s.Name(),
			Reason:       "upper Bollinger band touch",
			Metadata:     meta,
		}
	}

	return neutral(s.Name(), pair, ts, "price inside bands", meta)
}
