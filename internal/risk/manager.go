// Package risk implements position sizing, bracket derivation and portfolio
// circuit-breaker logic for the backtest core and any live driver built on
// the same contracts.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Config holds the risk management parameters.
type Config struct {
	RiskPerTrade          float64 // fraction of balance risked per trade
	DefaultLotSize        int     // lot unit, also the sizing granularity
	MaxPositionSize       int     // hard cap in currency units
	DefaultStopLossPips   float64
	DefaultTakeProfitPips float64
	MaxOpenPositions      int
	MaxTradesPerDay       int
	MaxDrawdownPercent    float64
	TrailingStopPips      float64
	Leverage              int
}

// DefaultConfig returns the stock FX risk parameters.
func DefaultConfig() Config {
	return Config{
		RiskPerTrade:          0.02,
		DefaultLotSize:        1000,
		MaxPositionSize:       10000,
		DefaultStopLossPips:   30,
		DefaultTakeProfitPips: 60,
		MaxOpenPositions:      3,
		MaxTradesPerDay:       10,
		MaxDrawdownPercent:    20,
		TrailingStopPips:      20,
		Leverage:              25,
	}
}

// Validate rejects unusable parameter combinations at construction time.
func (c Config) Validate() error {
	if c.RiskPerTrade <= 0 || c.RiskPerTrade >= 1 {
		return fmt.Errorf("risk config: risk per trade must be in (0, 1), got %.4f", c.RiskPerTrade)
	}
	if c.DefaultLotSize <= 0 {
		return fmt.Errorf("risk config: lot size must be positive, got %d", c.DefaultLotSize)
	}
	if c.MaxPositionSize < c.DefaultLotSize {
		return fmt.Errorf("risk config: max position size %d below lot size %d", c.MaxPositionSize, c.DefaultLotSize)
	}
	if c.DefaultStopLossPips <= 0 {
		return fmt.Errorf("risk config: default stop loss pips must be positive, got %.1f", c.DefaultStopLossPips)
	}
	if c.MaxOpenPositions <= 0 || c.MaxTradesPerDay <= 0 {
		return fmt.Errorf("risk config: position and trade caps must be positive")
	}
	if c.MaxDrawdownPercent <= 0 || c.MaxDrawdownPercent > 100 {
		return fmt.Errorf("risk config: max drawdown percent must be in (0, 100], got %.1f", c.MaxDrawdownPercent)
	}
	if c.Leverage <= 0 {
		return fmt.Errorf("risk config: leverage must be positive, got %d", c.Leverage)
	}
	return nil
}

// Manager owns per-run risk state: daily counters, the equity high-water
// mark and the trade history. Counters are reset by AdvanceTo, driven by the
// simulation clock rather than the wall clock, so replays are reproducible.
type Manager struct {
	config      Config
	history     []Record
	dailyTrades int
	dailyLoss   float64
	peakEquity  float64
	currentDate time.Time
}

// NewManager validates the configuration and returns a fresh manager.
func NewManager(config Config) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Manager{config: config}, nil
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config { return m.config }

// pipValuePerUnit is the account-currency value of one pip for one currency
// unit. JPY-quoted pairs settle directly in yen; other pairs are
// approximated through the entry price.
func pipValuePerUnit(pair types.CurrencyPair, entry float64) float64 {
	if pair.IsJPYQuoted() {
		return pair.PipSize()
	}
	return pair.PipSize() * entry
}

// CalculatePositionSize sizes a bracketed order so the loss at the stop does
// not exceed the configured fraction of balance, then caps by the maximum
// position size and by available margin at the configured leverage. The
// returned size is always a multiple of the lot unit.
func (m *Manager) CalculatePositionSize(account types.AccountState, entry, stop, target float64, pair types.CurrencyPair) PositionSizeResult {
	pipSize := pair.PipSize()
	stopPips := math.Abs(entry-stop) / pipSize
	riskAmount := account.Balance * m.config.RiskPerTrade
	perUnit := pipValuePerUnit(pair, entry)
	lot := m.config.DefaultLotSize

	size := m.config.DefaultLotSize
	if stopPips > 0 {
		size = int(riskAmount/(stopPips*perUnit)) / lot * lot
	}
	if size > m.config.MaxPositionSize {
		size = m.config.MaxPositionSize
	}

	// Margin cap at the configured leverage.
	leverage := float64(m.config.Leverage)
	if entry*float64(size)/leverage > account.MarginAvailable {
		size = int(account.MarginAvailable*leverage/entry) / lot * lot
	}
	if size < 0 {
		size = 0
	}

	riskReward := 2.0
	if target > 0 && stopPips > 0 {
		targetPips := math.Abs(target-entry) / pipSize
		riskReward = targetPips / stopPips
	}

	leverageUsed := 0.0
	if account.Balance > 0 {
		leverageUsed = entry * float64(size) / account.Balance
	}

	return PositionSizeResult{
		RecommendedSize: size,
		MaxSize:         m.config.MaxPositionSize,
		RiskAmount:      riskAmount,
		StopLossPips:    stopPips,
		RiskRewardRatio: riskReward,
		LeverageUsed:    leverageUsed,
	}
}

// StopLossFor derives a stop price: 2x ATR from entry when an ATR value is
// supplied, otherwise the fixed default pip distance.
func (m *Manager) StopLossFor(entry float64, side types.OrderSide, atr float64, pair types.CurrencyPair) float64 {
	distance := pair.PipSize() * m.config.DefaultStopLossPips
	if atr > 0 {
		distance = atr * 2
	}
	if side == types.Buy {
		return entry - distance
	}
	return entry + distance
}

// TakeProfitFor derives a target at riskReward times the stop distance on
// the profitable side of entry. A non-positive ratio falls back to 2.0.
func (m *Manager) TakeProfitFor(entry, stop float64, side types.OrderSide, riskReward float64) float64 {
	if riskReward <= 0 {
		riskReward = 2.0
	}
	distance := math.Abs(entry-stop) * riskReward
	if side == types.Buy {
		return entry + distance
	}
	return entry - distance
}

// ShouldClosePosition reports whether the current price has touched the
// position's stop or target, checking the stop first.
func (m *Manager) ShouldClosePosition(pos types.Position, price float64) (bool, string) {
	if pos.StopLoss > 0 {
		if pos.Side == types.Buy && price <= pos.StopLoss {
			return true, "stop loss hit"
		}
		if pos.Side == types.Sell && price >= pos.StopLoss {
			return true, "stop loss hit"
		}
	}
	if pos.TakeProfit > 0 {
		if pos.Side == types.Buy && price >= pos.TakeProfit {
			return true, "take profit hit"
		}
		if pos.Side == types.Sell && price <= pos.TakeProfit {
			return true, "take profit hit"
		}
	}
	return false, ""
}

// TrailingStop proposes a stop at the configured pip distance behind the
// current price. The candidate is returned only when it tightens the
// existing stop toward profit; a stop is never loosened.
func (m *Manager) TrailingStop(pos types.Position, price float64) (float64, bool) {
	distance := pos.Pair.PipSize() * m.config.TrailingStopPips
	if pos.Side == types.Buy {
		newStop := price - distance
		if pos.StopLoss > 0 && newStop > pos.StopLoss {
			return newStop, true
		}
		return 0, false
	}
	newStop := price + distance
	if pos.StopLoss > 0 && newStop < pos.StopLoss {
		return newStop, true
	}
	return 0, false
}

// AdvanceTo moves the manager's simulation clock. Crossing a date boundary
// resets the daily trade counter and loss accumulator.
func (m *Manager) AdvanceTo(t time.Time) {
	day := t.Truncate(24 * time.Hour)
	if m.currentDate.IsZero() {
		m.currentDate = day
		return
	}
	if day.After(m.currentDate) {
		m.dailyTrades = 0
		m.dailyLoss = 0
		m.currentDate = day
	}
}

// RecordTrade books a trade into the history and daily counters.
func (m *Manager) RecordTrade(rec Record) {
	m.history = append(m.history, rec)
	m.dailyTrades++
	if rec.Closed && rec.PnL < 0 {
		m.dailyLoss += -rec.PnL
	}
}

// AssessRisk evaluates drawdown against the running peak equity, open
// position risk and the trading caps, and decides whether new entries are
// allowed.
func (m *Manager) AssessRisk(account types.AccountState, positions []types.Position) Assessment {
	var warnings []string
	canTrade := true
	reason := ""

	if account.Equity > m.peakEquity {
		m.peakEquity = account.Equity
	}
	drawdown := 0.0
	if m.peakEquity > 0 {
		drawdown = (m.peakEquity - account.Equity) / m.peakEquity * 100
	}

	openRisk := 0.0
	for _, pos := range positions {
		if pos.StopLoss <= 0 {
			continue
		}
		pipSize := pos.Pair.PipSize()
		stopPips := math.Abs(pos.EntryPrice-pos.StopLoss) / pipSize
		openRisk += stopPips * pipValuePerUnit(pos.Pair, pos.EntryPrice) * float64(pos.Quantity)
	}

	level := LevelLow
	switch {
	case drawdown >= m.config.MaxDrawdownPercent:
		level = LevelCritical
		canTrade = false
		reason = fmt.Sprintf("max drawdown (%.1f%%) reached", m.config.MaxDrawdownPercent)
		warnings = append(warnings, reason)
	case drawdown >= m.config.MaxDrawdownPercent*0.7:
		level = LevelHigh
		warnings = append(warnings, fmt.Sprintf("drawdown warning: %.1f%%", drawdown))
	case drawdown >= m.config.MaxDrawdownPercent*0.5:
		level = LevelMedium
	}

	if m.dailyTrades >= m.config.MaxTradesPerDay {
		canTrade = false
		reason = fmt.Sprintf("daily trade cap (%d) reached", m.config.MaxTradesPerDay)
		warnings = append(warnings, reason)
	}
	if len(positions) >= m.config.MaxOpenPositions {
		canTrade = false
		reason = fmt.Sprintf("max open positions (%d) reached", m.config.MaxOpenPositions)
		warnings = append(warnings, reason)
	}
	if account.MarginLevel > 0 && account.MarginLevel < 200 {
		level = LevelCritical
		warnings = append(warnings, fmt.Sprintf("margin level low: %.0f%%", account.MarginLevel))
		if account.MarginLevel < 150 {
			canTrade = false
			reason = "margin level below safe floor"
		}
	}

	return Assessment{
		Level:            level,
		CurrentDrawdown:  drawdown,
		OpenPositionRisk: openRisk,
		DailyLoss:        m.dailyLoss,
		Warnings:         warnings,
		CanTrade:         canTrade,
		Reason:           reason,
	}
}

// Stats summarizes the closed trades in the manager's history.
func (m *Manager) Stats() Stats {
	var s Stats
	var totalProfit, totalLoss float64
	for _, rec := range m.history {
		if !rec.Closed {
			continue
		}
		s.TotalTrades++
		s.TotalPnL += rec.PnL
		if rec.PnL > 0 {
			s.WinningTrades++
			totalProfit += rec.PnL
			if rec.PnL > s.MaxWin {
				s.MaxWin = rec.PnL
			}
		} else {
			s.LosingTrades++
			totalLoss += -rec.PnL
			if rec.PnL < s.MaxLoss {
				s.MaxLoss = rec.PnL
			}
		}
	}
	if s.TotalTrades == 0 {
		return s
	}
	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	s.AveragePnL = s.TotalPnL / float64(s.TotalTrades)
	if totalLoss > 0 {
		s.ProfitFactor = totalProfit / totalLoss
	} else if totalProfit > 0 {
		s.ProfitFactor = math.Inf(1)
	}
	return s
}
