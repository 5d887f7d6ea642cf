// Package backtest implements a deterministic replay of historical bars
// through a signal-generating strategy, with simulated spread/slippage fills
// and full performance accounting.
package backtest

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/esuzuk/fx-backtest/internal/risk"
	"github.com/esuzuk/fx-backtest/internal/strategy"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// ErrInsufficientBars is returned when a run is attempted on fewer than
// MinBars bars.
var ErrInsufficientBars = errors.New("backtest: insufficient bars")

// yenPerUnitNonJPY is the fixed conversion applied to P&L of pairs not
// quoted in yen, approximating account-currency settlement.
const yenPerUnitNonJPY = 150.0

// unitsPerLot is the contract size used for per-lot commission.
const unitsPerLot = 10_000

// EquityPoint is one sample of the equity curve, appended every processed
// bar whether or not a trade transition occurred.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Engine replays one ordered bar sequence through a strategy. A run is a
// linear, single-threaded replay: the engine owns its account state, risk
// manager and random source for the duration of one Run and is not
// reentrant.
type Engine struct {
	strat       strategy.Strategy
	config      Config
	riskManager *risk.Manager
	rng         *rand.Rand

	balance      float64
	equityCurve  []EquityPoint
	trades       []*Trade
	openTrades   []*Trade
	tradeCounter int
	lastEntryBar int
}

// NewEngine validates both configurations and builds an engine. The risk
// manager's leverage is aligned with the simulation leverage.
func NewEngine(strat strategy.Strategy, riskConfig risk.Config, config Config) (*Engine, error) {
	if strat == nil {
		return nil, errors.New("backtest: strategy is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	riskConfig.Leverage = config.Leverage
	manager, err := risk.NewManager(riskConfig)
	if err != nil {
		return nil, err
	}
	return &Engine{
		strat:       strat,
		config:      config,
		riskManager: manager,
	}, nil
}

// Run replays the bars and compiles the result. Bars must be chronologically
// ordered and well-formed; at least MinBars are required. Two runs with the
// same config, bars and seed produce identical results.
func (e *Engine) Run(bars []types.Bar, pair types.CurrencyPair) (*Result, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("%w: got %d bars, need at least %d", ErrInsufficientBars, len(bars), MinBars)
	}
	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && bar.Timestamp.Before(bars[i-1].Timestamp) {
			return nil, fmt.Errorf("backtest: bars out of order at index %d (%s before %s)", i, bar.Timestamp, bars[i-1].Timestamp)
		}
	}

	e.reset()

	pipSize := pair.PipSize()
	spread := pipSize * e.config.SpreadPips

	for barIdx := e.config.WarmupBars; barIdx < len(bars); barIdx++ {
		bar := bars[barIdx]
		history := bars[:barIdx+1]
		tick := types.Tick{
			Pair:      pair,
			Bid:       bar.Close - spread/2,
			Ask:       bar.Close + spread/2,
			Timestamp: bar.Timestamp,
		}

		e.riskManager.AdvanceTo(bar.Timestamp)
		e.checkOpenTrades(bar, tick)

		signal := e.strat.GenerateSignal(pair, history, &tick)
		side, actionable := signal.OrderSide()
		if actionable {
			e.closeOpposing(side, tick, bar.Timestamp)
			if barIdx-e.lastEntryBar >= e.config.MinTradeIntervalBars &&
				len(e.openTrades) < e.riskManager.Config().MaxOpenPositions {
				e.tryOpenTrade(signal, side, tick, bar.Timestamp, barIdx)
			}
		}

		if e.config.UseTrailingStop {
			e.trailStops(tick)
		}

		e.equityCurve = append(e.equityCurve, EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    e.currentEquity(tick),
		})
	}

	// Force-close anything still open so the ledger contains only closed
	// trades and every run terminates with well-formed statistics.
	finalBar := bars[len(bars)-1]
	finalTick := types.Tick{
		Pair:      pair,
		Bid:       finalBar.Close - spread/2,
		Ask:       finalBar.Close + spread/2,
		Timestamp: finalBar.Timestamp,
	}
	for _, trade := range append([]*Trade(nil), e.openTrades...) {
		e.closeTrade(trade, finalTick, finalBar.Timestamp, "backtest end")
	}

	return e.compileResults(pair, bars[0].Timestamp, finalBar.Timestamp), nil
}

func (e *Engine) reset() {
	e.rng = rand.New(rand.NewSource(e.config.Seed))
	e.balance = e.config.InitialBalance
	e.equityCurve = nil
	e.trades = nil
	e.openTrades = nil
	e.tradeCounter = 0
	e.lastEntryBar = -1 << 30
}

// slippageAmount samples uniform adverse slippage in price units.
func (e *Engine) slippageAmount(pair types.CurrencyPair) float64 {
	return e.rng.Float64() * e.config.SlippagePips * pair.PipSize()
}

// tryOpenTrade sizes the order through the risk manager and opens the trade
// when risk checks pass and the sized quantity is non-zero.
func (e *Engine) tryOpenTrade(signal strategy.Signal, side types.OrderSide, tick types.Tick, ts time.Time, barIdx int) {
	account := e.accountState(tick)
	assessment := e.riskManager.AssessRisk(account, e.openPositions())
	if !assessment.CanTrade {
		return
	}

	// Entries always pay the worse side of the book plus slippage.
	slip := e.slippageAmount(signal.Pair)
	var entryPrice float64
	if side == types.Buy {
		entryPrice = tick.Ask + slip
	} else {
		entryPrice = tick.Bid - slip
	}

	stop := signal.StopLoss
	if stop <= 0 {
		stop = e.riskManager.StopLossFor(entryPrice, side, 0, signal.Pair)
	}
	target := signal.TakeProfit
	if target <= 0 {
		target = e.riskManager.TakeProfitFor(entryPrice, stop, side, 0)
	}

	sizing := e.riskManager.CalculatePositionSize(account, entryPrice, stop, target, signal.Pair)
	if sizing.RecommendedSize <= 0 {
		return
	}

	e.tradeCounter++
	trade := &Trade{
		ID:           e.tradeCounter,
		Pair:         signal.Pair,
		Side:         side,
		EntryTime:    ts,
		EntryPrice:   entryPrice,
		Quantity:     sizing.RecommendedSize,
		StopLoss:     stop,
		TakeProfit:   target,
		StrategyName: signal.StrategyName,
		Confidence:   signal.Confidence,
	}
	e.openTrades = append(e.openTrades, trade)
	e.lastEntryBar = barIdx
}

// checkOpenTrades walks open positions against the bar's intrabar range:
// stop-loss touches first, then take-profit.
func (e *Engine) checkOpenTrades(bar types.Bar, tick types.Tick) {
	for _, trade := range append([]*Trade(nil), e.openTrades...) {
		if trade.StopLoss > 0 {
			if trade.Side == types.Buy && bar.Low <= trade.StopLoss {
				e.closeTrade(trade, tick, bar.Timestamp, "stop loss")
				continue
			}
			if trade.Side == types.Sell && bar.High >= trade.StopLoss {
				e.closeTrade(trade, tick, bar.Timestamp, "stop loss")
				continue
			}
		}
		if trade.TakeProfit > 0 {
			if trade.Side == types.Buy && bar.High >= trade.TakeProfit {
				e.closeTrade(trade, tick, bar.Timestamp, "take profit")
				continue
			}
			if trade.Side == types.Sell && bar.Low <= trade.TakeProfit {
				e.closeTrade(trade, tick, bar.Timestamp, "take profit")
			}
		}
	}
}

// closeOpposing exits open trades whose side opposes a fresh signal.
func (e *Engine) closeOpposing(side types.OrderSide, tick types.Tick, ts time.Time) {
	for _, trade := range append([]*Trade(nil), e.openTrades...) {
		if trade.Side != side {
			e.closeTrade(trade, tick, ts, "opposing signal")
		}
	}
}

// trailStops tightens stops on open trades via the risk manager; stops only
// ever move toward profit.
func (e *Engine) trailStops(tick types.Tick) {
	for _, trade := range e.openTrades {
		pos := e.asPosition(trade, tick)
		if newStop, ok := e.riskManager.TrailingStop(pos, tick.Mid()); ok {
			trade.StopLoss = newStop
		}
	}
}

// closeTrade books the exit fill, P&L and commission, updates the balance
// and moves the trade from open to the ledger.
func (e *Engine) closeTrade(trade *Trade, tick types.Tick, ts time.Time, reason string) {
	slip := e.slippageAmount(trade.Pair)
	var exitPrice float64
	if trade.Side == types.Buy {
		exitPrice = tick.Bid - slip
	} else {
		exitPrice = tick.Ask + slip
	}

	pipSize := trade.Pair.PipSize()
	var pnlPips float64
	if trade.Side == types.Buy {
		pnlPips = (exitPrice - trade.EntryPrice) / pipSize
	} else {
		pnlPips = (trade.EntryPrice - exitPrice) / pipSize
	}

	pnl := pnlPips * pipSize * float64(trade.Quantity)
	if !trade.Pair.IsJPYQuoted() {
		pnl *= yenPerUnitNonJPY
	}
	pnl -= e.config.CommissionPerLot * float64(trade.Quantity) / unitsPerLot

	trade.ExitTime = ts
	trade.ExitPrice = exitPrice
	trade.PnL = pnl
	trade.PnLPips = pnlPips
	trade.ExitReason = reason

	e.balance += pnl
	e.riskManager.RecordTrade(risk.Record{
		Timestamp: ts,
		Pair:      trade.Pair,
		Side:      trade.Side,
		Entry:     trade.EntryPrice,
		Exit:      exitPrice,
		Quantity:  trade.Quantity,
		PnL:       pnl,
		PnLPips:   pnlPips,
		Closed:    true,
	})

	for i, open := range e.openTrades {
		if open == trade {
			e.openTrades = append(e.openTrades[:i], e.openTrades[i+1:]...)
			break
		}
	}
	e.trades = append(e.trades, trade)
}

// currentEquity marks open positions to the tick: realized balance plus
// unrealized P&L.
func (e *Engine) currentEquity(tick types.Tick) float64 {
	equity := e.balance
	for _, trade := range e.openTrades {
		var diff float64
		if trade.Side == types.Buy {
			diff = tick.Bid - trade.EntryPrice
		} else {
			diff = trade.EntryPrice - tick.Ask
		}
		unrealized := diff * float64(trade.Quantity)
		if !trade.Pair.IsJPYQuoted() {
			unrealized *= yenPerUnitNonJPY
		}
		equity += unrealized
	}
	return equity
}

// accountState snapshots balances and margin from current marks.
func (e *Engine) accountState(tick types.Tick) types.AccountState {
	equity := e.currentEquity(tick)
	marginUsed := 0.0
	for _, trade := range e.openTrades {
		marginUsed += trade.EntryPrice * float64(trade.Quantity) / float64(e.config.Leverage)
	}
	state := types.AccountState{
		Balance:         e.balance,
		Equity:          equity,
		MarginUsed:      marginUsed,
		MarginAvailable: equity - marginUsed,
		UnrealizedPnL:   equity - e.balance,
	}
	if marginUsed > 0 {
		state.MarginLevel = equity / marginUsed * 100
	}
	return state
}

func (e *Engine) openPositions() []types.Position {
	positions := make([]types.Position, 0, len(e.openTrades))
	for _, trade := range e.openTrades {
		positions = append(positions, e.asPosition(trade, types.Tick{}))
	}
	return positions
}

func (e *Engine) asPosition(trade *Trade, tick types.Tick) types.Position {
	return types.Position{
		ID:           strconv.Itoa(trade.ID),
		Pair:         trade.Pair,
		Side:         trade.Side,
		Quantity:     trade.Quantity,
		EntryTime:    trade.EntryTime,
		EntryPrice:   trade.EntryPrice,
		CurrentPrice: tick.Mid(),
		StopLoss:     trade.StopLoss,
		TakeProfit:   trade.TakeProfit,
	}
}
