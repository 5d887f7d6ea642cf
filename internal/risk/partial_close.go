package risk

import (
	"fmt"
	"math"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// pipEpsilon absorbs float64 division error in profit-pip arithmetic so a
// ladder level fires when its threshold is reached exactly (60 pips of profit
// can compute as 59.999...).
const pipEpsilon = 1e-9

// CloseLevel is one rung of the partial-close ladder: when unrealized profit
// reaches ProfitPips, close Fraction of the position.
type CloseLevel struct {
	ProfitPips float64
	Fraction   float64
}

// PartialCloser scales out of winning positions over an ascending ladder of
// profit levels. Fired levels are tracked per position ID so each level
// fires at most once per position.
type PartialCloser struct {
	levels  []CloseLevel
	lotSize int
	fired   map[string]map[int]bool
}

// DefaultCloseLevels is the stock ladder: half off at 30 pips, 30% at 60,
// the rest at 100.
func DefaultCloseLevels() []CloseLevel {
	return []CloseLevel{
		{ProfitPips: 30, Fraction: 0.5},
		{ProfitPips: 60, Fraction: 0.3},
		{ProfitPips: 100, Fraction: 0.2},
	}
}

// NewPartialCloser validates that levels ascend in profit and that every
// fraction is usable.
func NewPartialCloser(levels []CloseLevel, lotSize int) (*PartialCloser, error) {
	if len(levels) == 0 {
		levels = DefaultCloseLevels()
	}
	if lotSize <= 0 {
		return nil, fmt.Errorf("partial closer: lot size must be positive, got %d", lotSize)
	}
	prev := 0.0
	for i, lv := range levels {
		if lv.ProfitPips <= prev {
			return nil, fmt.Errorf("partial closer: level %d profit %.1f pips not ascending", i, lv.ProfitPips)
		}
		if lv.Fraction <= 0 || lv.Fraction > 1 {
			return nil, fmt.Errorf("partial closer: level %d fraction %.2f out of (0, 1]", i, lv.Fraction)
		}
		prev = lv.ProfitPips
	}
	return &PartialCloser{
		levels:  levels,
		lotSize: lotSize,
		fired:   make(map[string]map[int]bool),
	}, nil
}

// Check returns the quantity to close at the current price, if any ladder
// level has been reached that has not fired yet for this position. Levels
// are evaluated in ascending order; quantities round down to the lot unit
// and a level whose quantity rounds to zero is skipped without firing.
func (p *PartialCloser) Check(pos types.Position, price float64) (int, string, bool) {
	pipSize := pos.Pair.PipSize()
	var profitPips float64
	if pos.Side == types.Buy {
		profitPips = (price - pos.EntryPrice) / pipSize
	} else {
		profitPips = (pos.EntryPrice - price) / pipSize
	}
	if profitPips <= 0 {
		return 0, "", false
	}

	firedLevels := p.fired[pos.ID]
	if firedLevels == nil {
		firedLevels = make(map[int]bool)
		p.fired[pos.ID] = firedLevels
	}

	for idx, lv := range p.levels {
		if firedLevels[idx] || profitPips < lv.ProfitPips-pipEpsilon {
			continue
		}
		qty := int(math.Floor(float64(pos.Quantity)*lv.Fraction)) / p.lotSize * p.lotSize
		if qty <= 0 {
			continue
		}
		firedLevels[idx] = true
		reason := fmt.Sprintf("partial close: %.0f pips reached, closing %.0f%%", lv.ProfitPips, lv.Fraction*100)
		return qty, reason, true
	}
	return 0, "", false
}

// Forget drops the fired-level state for a position, e.g. after it closes.
func (p *PartialCloser) Forget(positionID string) {
	delete(p.fired, positionID)
}
