package risk

import (
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Level grades the current portfolio risk.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// PositionSizeResult is the output of position sizing.
type PositionSizeResult struct {
	RecommendedSize int     // currency units, a multiple of the lot unit
	MaxSize         int     // configured hard cap
	RiskAmount      float64 // account currency at risk at the stop
	StopLossPips    float64
	RiskRewardRatio float64
	LeverageUsed    float64
}

// Assessment is the output of a portfolio risk check.
type Assessment struct {
	Level            Level
	CurrentDrawdown  float64 // percent decline from peak equity
	OpenPositionRisk float64 // account currency at risk across open stops
	DailyLoss        float64
	Warnings         []string
	CanTrade         bool
	Reason           string
}

// Record is one completed (or still open) trade as seen by the risk manager.
type Record struct {
	Timestamp time.Time
	Pair      types.CurrencyPair
	Side      types.OrderSide
	Entry     float64
	Exit      float64 // 0 while open
	Quantity  int
	PnL       float64
	PnLPips   float64
	Closed    bool
}

// Stats summarizes the manager's trade history.
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	TotalPnL      float64
	AveragePnL    float64
	MaxWin        float64
	MaxLoss       float64
	ProfitFactor  float64
}
