package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/esuzuk/fx-backtest/internal/backtest"
)

// jsonResult is the serialized shape of a backtest result. Trades and the
// equity curve are included in full; infinite profit factor serializes as
// the string "inf" since JSON has no infinity literal.
type jsonResult struct {
	Pair             string              `json:"pair"`
	Strategy         string              `json:"strategy"`
	StartTime        time.Time           `json:"start_time"`
	EndTime          time.Time           `json:"end_time"`
	InitialBalance   float64             `json:"initial_balance"`
	FinalBalance     float64             `json:"final_balance"`
	TotalReturn      float64             `json:"total_return_pct"`
	AnnualizedReturn float64             `json:"annualized_return_pct"`
	MaxDrawdown      float64             `json:"max_drawdown_pct"`
	SharpeRatio      float64             `json:"sharpe_ratio"`
	SortinoRatio     float64             `json:"sortino_ratio"`
	CalmarRatio      float64             `json:"calmar_ratio"`
	TotalTrades      int                 `json:"total_trades"`
	WinningTrades    int                 `json:"winning_trades"`
	LosingTrades     int                 `json:"losing_trades"`
	WinRate          float64             `json:"win_rate_pct"`
	ProfitFactor     json.RawMessage     `json:"profit_factor"`
	AverageWin       float64             `json:"average_win"`
	AverageLoss      float64             `json:"average_loss"`
	LargestWin       float64             `json:"largest_win"`
	LargestLoss      float64             `json:"largest_loss"`
	Trades           []jsonTrade         `json:"trades"`
	EquityCurve      []jsonEquityPoint   `json:"equity_curve"`
	MonthlyReturns   []jsonMonthlyReturn `json:"monthly_returns"`
}

type jsonTrade struct {
	ID         int       `json:"id"`
	Side       string    `json:"side"`
	EntryTime  time.Time `json:"entry_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitTime   time.Time `json:"exit_time"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   int       `json:"quantity"`
	PnL        float64   `json:"pnl"`
	PnLPips    float64   `json:"pnl_pips"`
	ExitReason string    `json:"exit_reason"`
	Strategy   string    `json:"strategy"`
}

type jsonEquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

type jsonMonthlyReturn struct {
	Month  string  `json:"month"`
	Return float64 `json:"return_pct"`
}

// WriteJSON serializes a result to the given path.
func WriteJSON(result *backtest.Result, path string) error {
	out := toJSONResult(result)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("reporting: marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("reporting: write %s: %w", path, err)
	}
	return nil
}

func toJSONResult(result *backtest.Result) jsonResult {
	out := jsonResult{
		Pair:             string(result.Pair),
		Strategy:         result.StrategyName,
		StartTime:        result.StartTime,
		EndTime:          result.EndTime,
		InitialBalance:   result.InitialBalance,
		FinalBalance:     result.FinalBalance,
		TotalReturn:      result.TotalReturnPercent,
		AnnualizedReturn: result.AnnualizedReturnPercent,
		MaxDrawdown:      result.MaxDrawdownPercent,
		SharpeRatio:      result.SharpeRatio,
		SortinoRatio:     result.SortinoRatio,
		CalmarRatio:      result.CalmarRatio,
		TotalTrades:      result.TotalTrades,
		WinningTrades:    result.WinningTrades,
		LosingTrades:     result.LosingTrades,
		WinRate:          result.WinRate,
		AverageWin:       result.AverageWin,
		AverageLoss:      result.AverageLoss,
		LargestWin:       result.LargestWin,
		LargestLoss:      result.LargestLoss,
	}
	if pf := formatProfitFactor(result.ProfitFactor); pf == "inf" {
		out.ProfitFactor = json.RawMessage(`"inf"`)
	} else {
		out.ProfitFactor = json.RawMessage(pf)
	}
	for _, trade := range result.Trades {
		out.Trades = append(out.Trades, jsonTrade{
			ID:         trade.ID,
			Side:       trade.Side.String(),
			EntryTime:  trade.EntryTime,
			EntryPrice: trade.EntryPrice,
			ExitTime:   trade.ExitTime,
			ExitPrice:  trade.ExitPrice,
			Quantity:   trade.Quantity,
			PnL:        trade.PnL,
			PnLPips:    trade.PnLPips,
			ExitReason: trade.ExitReason,
			Strategy:   trade.StrategyName,
		})
	}
	for _, pt := range result.EquityCurve {
		out.EquityCurve = append(out.EquityCurve, jsonEquityPoint{Timestamp: pt.Timestamp, Equity: pt.Equity})
	}
	for _, m := range result.MonthlyReturns {
		out.MonthlyReturns = append(out.MonthlyReturns, jsonMonthlyReturn{
			Month:  fmt.Sprintf("%d-%02d", m.Year, int(m.Month)),
			Return: m.ReturnPercent,
		})
	}
	return out
}
