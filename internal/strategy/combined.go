package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Combined runs a fixed set of sub-strategies and only signals when at least
// minAgreement of them agree on direction. Confidence is the mean of the
// agreeing confidences, so adding an agreeing sub-signal never lowers it
// below the weakest member; entry, stop and target are copied from the
// highest-confidence agreeing sub-signal.
type Combined struct {
	strategies   []Strategy
	minAgreement int
}

// NewCombined validates the agreement threshold against the sub-strategy set.
func NewCombined(strategies []Strategy, minAgreement int) (*Combined, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("combined: at least one sub-strategy required")
	}
	if minAgreement <= 0 || minAgreement > len(strategies) {
		return nil, fmt.Errorf("combined: min agreement %d out of range for %d strategies", minAgreement, len(strategies))
	}
	return &Combined{strategies: strategies, minAgreement: minAgreement}, nil
}

// NewCombinedDefault builds the default voting set: MA cross, RSI mean
// reversion and MACD cross.
func NewCombinedDefault(minAgreement int) (*Combined, error) {
	maCross, err := NewMovingAverageCross(20, 50)
	if err != nil {
		return nil, err
	}
	rsi, err := NewRSIMeanReversion(14, 30, 70)
	if err != nil {
		return nil, err
	}
	macd, err := NewMACDCross(12, 26, 9)
	if err != nil {
		return nil, err
	}
	return NewCombined([]Strategy{maCross, rsi, macd}, minAgreement)
}

func (s *Combined) Name() string { return "Combined" }

func (s *Combined) WarmupBars() int {
	max := 0
	for _, sub := range s.strategies {
		if w := sub.WarmupBars(); w > max {
			max = w
		}
	}
	return max
}

func (s *Combined) GenerateSignal(pair types.CurrencyPair, bars []types.Bar, tick *types.Tick) Signal {
	ts := signalTime(bars, tick)

	var buys, sells []Signal
	for _, sub := range s.strategies {
		sig := sub.GenerateSignal(pair, bars, tick)
		switch {
		case sig.Type.IsBuy():
			buys = append(buys, sig)
		case sig.Type.IsSell():
			sells = append(sells, sig)
		}
	}

	if len(buys) >= s.minAgreement {
		return s.consensus(pair, ts, buys, true)
	}
	if len(sells) >= s.minAgreement {
		return s.consensus(pair, ts, sells, false)
	}
	return neutral(s.Name(), pair, ts, "no consensus between strategies", nil)
}

func (s *Combined) consensus(pair types.CurrencyPair, ts time.Time, agreeing []Signal, isBuy bool) Signal {
	sum := 0.0
	best := agreeing[0]
	reasons := make([]string, 0, len(agreeing))
	for _, sig := range agreeing {
		sum += sig.Confidence
		if sig.Confidence > best.Confidence {
			best = sig
		}
		reasons = append(reasons, sig.Reason)
	}

	signalType := BuySignal
	if isBuy && len(agreeing) >= 3 {
		signalType = StrongBuy
	}
	if !isBuy {
		signalType = SellSignal
		if len(agreeing) >= 3 {
			signalType = StrongSell
		}
	}

	direction := "buy"
	if !isBuy {
		direction = "sell"
	}
	return Signal{
		Type:         signalType,
		Pair:         pair,
		Timestamp:    ts,
		Confidence:   sum / float64(len(agreeing)),
		EntryPrice:   best.EntryPrice,
		StopLoss:     best.StopLoss,
		TakeProfit:   best.TakeProfit,
		StrategyName: s.Name(),
		Reason:       fmt.Sprintf("consensus (%d %s): %s", len(agreeing), direction, strings.Join(reasons, "; ")),
		Metadata:     map[string]float64{"agreeing": float64(len(agreeing))},
	}
}
