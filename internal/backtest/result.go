package backtest

import (
	"math"
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// tradingDaysPerYear annualizes per-bar return statistics on a daily-bar
// assumption.
const tradingDaysPerYear = 252

// MonthlyReturn is one calendar-month snapshot of the equity curve.
type MonthlyReturn struct {
	Year          int
	Month         time.Month
	StartEquity   float64
	EndEquity     float64
	ReturnPercent float64
}

// Result is the immutable summary of one backtest run.
type Result struct {
	Pair           types.CurrencyPair
	StrategyName   string
	StartTime      time.Time
	EndTime        time.Time
	InitialBalance float64
	FinalBalance   float64

	TotalReturnPercent      float64
	AnnualizedReturnPercent float64
	MaxDrawdownPercent      float64
	SharpeRatio             float64
	SortinoRatio            float64
	CalmarRatio             float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent
	ProfitFactor  float64 // +Inf when wins exist and losses do not

	AverageWin           float64
	AverageLoss          float64
	LargestWin           float64
	LargestLoss          float64
	AverageTradeDuration time.Duration

	Trades         []*Trade
	EquityCurve    []EquityPoint
	MonthlyReturns []MonthlyReturn
}

// FlatRecord flattens the summary statistics for tabular reporting.
func (r *Result) FlatRecord() map[string]float64 {
	return map[string]float64{
		"total_return_pct":      r.TotalReturnPercent,
		"annualized_return_pct": r.AnnualizedReturnPercent,
		"max_drawdown_pct":      r.MaxDrawdownPercent,
		"sharpe_ratio":          r.SharpeRatio,
		"sortino_ratio":         r.SortinoRatio,
		"calmar_ratio":          r.CalmarRatio,
		"total_trades":          float64(r.TotalTrades),
		"win_rate_pct":          r.WinRate,
		"profit_factor":         r.ProfitFactor,
		"average_win":           r.AverageWin,
		"average_loss":          r.AverageLoss,
		"largest_win":           r.LargestWin,
		"largest_loss":          r.LargestLoss,
		"final_balance":         r.FinalBalance,
	}
}

// Metric returns the named summary field for optimizer ranking.
func (r *Result) Metric(name string) (float64, bool) {
	v, ok := r.FlatRecord()[name]
	return v, ok
}

func (e *Engine) compileResults(pair types.CurrencyPair, start, end time.Time) *Result {
	result := &Result{
		Pair:           pair,
		StrategyName:   e.strat.Name(),
		StartTime:      start,
		EndTime:        end,
		InitialBalance: e.config.InitialBalance,
		FinalBalance:   e.balance,
		Trades:         e.trades,
		EquityCurve:    e.equityCurve,
	}

	result.TotalReturnPercent = (e.balance - e.config.InitialBalance) / e.config.InitialBalance * 100

	years := end.Sub(start).Hours() / 24 / 365.25
	if years > 0 {
		growth := e.balance / e.config.InitialBalance
		if growth > 0 {
			result.AnnualizedReturnPercent = (math.Pow(growth, 1/years) - 1) * 100
		}
	}

	equities := make([]float64, 0, len(e.equityCurve)+1)
	equities = append(equities, e.config.InitialBalance)
	for _, pt := range e.equityCurve {
		equities = append(equities, pt.Equity)
	}
	result.MaxDrawdownPercent = maxDrawdown(equities)

	returns := barReturns(equities)
	result.SharpeRatio = sharpeRatio(returns)
	result.SortinoRatio = sortinoRatio(returns)
	if result.MaxDrawdownPercent > 0 {
		result.CalmarRatio = result.AnnualizedReturnPercent / result.MaxDrawdownPercent
	}

	e.compileTradeStats(result)
	result.MonthlyReturns = monthlyReturns(e.equityCurve, e.config.InitialBalance)
	return result
}

func (e *Engine) compileTradeStats(result *Result) {
	var totalProfit, totalLoss float64
	var totalDuration time.Duration
	for _, trade := range e.trades {
		result.TotalTrades++
		totalDuration += trade.Duration()
		if trade.PnL > 0 {
			result.WinningTrades++
			totalProfit += trade.PnL
			if trade.PnL > result.LargestWin {
				result.LargestWin = trade.PnL
			}
		} else {
			result.LosingTrades++
			totalLoss += -trade.PnL
			if trade.PnL < result.LargestLoss {
				result.LargestLoss = trade.PnL
			}
		}
	}
	if result.TotalTrades == 0 {
		return
	}
	result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	result.AverageTradeDuration = totalDuration / time.Duration(result.TotalTrades)
	if result.WinningTrades > 0 {
		result.AverageWin = totalProfit / float64(result.WinningTrades)
	}
	if result.LosingTrades > 0 {
		result.AverageLoss = -totalLoss / float64(result.LosingTrades)
	}
	if totalLoss > 0 {
		result.ProfitFactor = totalProfit / totalLoss
	} else if totalProfit > 0 {
		result.ProfitFactor = math.Inf(1)
	}
}

// maxDrawdown is the largest peak-to-trough equity decline, in percent.
func maxDrawdown(equities []float64) float64 {
	var peak, maxDD float64
	for _, eq := range equities {
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			dd := (peak - eq) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// barReturns converts an equity series into simple per-bar returns.
func barReturns(equities []float64) []float64 {
	if len(equities) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equities)-1)
	for i := 1; i < len(equities); i++ {
		if equities[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (equities[i]-equities[i-1])/equities[i-1])
	}
	return returns
}

// sharpeRatio annualizes mean/stdev of per-bar returns. Zero on a flat or
// empty series rather than NaN.
func sharpeRatio(returns []float64) float64 {
	mean, stdev := meanStdev(returns)
	if stdev == 0 {
		return 0
	}
	return mean / stdev * math.Sqrt(tradingDaysPerYear)
}

// sortinoRatio is Sharpe with only downside deviations in the denominator.
func sortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var downSq float64
	for _, r := range returns {
		if r < 0 {
			downSq += r * r
		}
	}
	downside := math.Sqrt(downSq / float64(len(returns)))
	if downside == 0 {
		return 0
	}
	return mean / downside * math.Sqrt(tradingDaysPerYear)
}

func meanStdev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// monthlyReturns snapshots equity at each calendar-month boundary.
func monthlyReturns(curve []EquityPoint, initialBalance float64) []MonthlyReturn {
	if len(curve) == 0 {
		return nil
	}
	var out []MonthlyReturn
	cur := MonthlyReturn{
		Year:        curve[0].Timestamp.Year(),
		Month:       curve[0].Timestamp.Month(),
		StartEquity: initialBalance,
	}
	for _, pt := range curve {
		y, m := pt.Timestamp.Year(), pt.Timestamp.Month()
		if y != cur.Year || m != cur.Month {
			finalizeMonth(&cur)
			out = append(out, cur)
			cur = MonthlyReturn{Year: y, Month: m, StartEquity: cur.EndEquity}
		}
		cur.EndEquity = pt.Equity
	}
	finalizeMonth(&cur)
	out = append(out, cur)
	return out
}

func finalizeMonth(m *MonthlyReturn) {
	if m.StartEquity > 0 {
		m.ReturnPercent = (m.EndEquity - m.StartEquity) / m.StartEquity * 100
	}
}
