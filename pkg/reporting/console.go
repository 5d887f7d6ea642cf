// Package reporting renders backtest and optimization results for human and
// machine consumers.
package reporting

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/esuzuk/fx-backtest/internal/backtest"
)

// ConsoleReporter renders results as terminal tables.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter writes to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo writes to the given writer.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// PrintResult renders the summary statistics of one run.
func (r *ConsoleReporter) PrintResult(result *backtest.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("BACKTEST RESULTS")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Pair", string(result.Pair)},
		{"Strategy", result.StrategyName},
		{"Period", fmt.Sprintf("%s - %s", result.StartTime.Format("2006-01-02"), result.EndTime.Format("2006-01-02"))},
		{"Initial Balance", fmt.Sprintf("%.2f", result.InitialBalance)},
		{"Final Balance", fmt.Sprintf("%.2f", result.FinalBalance)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Total Return", fmt.Sprintf("%.2f%%", result.TotalReturnPercent)},
		{"Annualized Return", fmt.Sprintf("%.2f%%", result.AnnualizedReturnPercent)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", result.MaxDrawdownPercent)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", result.SharpeRatio)},
		{"Sortino Ratio", fmt.Sprintf("%.2f", result.SortinoRatio)},
		{"Calmar Ratio", fmt.Sprintf("%.2f", result.CalmarRatio)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Total Trades", result.TotalTrades},
		{"Winning Trades", result.WinningTrades},
		{"Losing Trades", result.LosingTrades},
		{"Win Rate", fmt.Sprintf("%.1f%%", result.WinRate)},
		{"Profit Factor", formatProfitFactor(result.ProfitFactor)},
		{"Average Win", fmt.Sprintf("%.2f", result.AverageWin)},
		{"Average Loss", fmt.Sprintf("%.2f", result.AverageLoss)},
		{"Largest Win", fmt.Sprintf("%.2f", result.LargestWin)},
		{"Largest Loss", fmt.Sprintf("%.2f", result.LargestLoss)},
		{"Avg Trade Duration", result.AverageTradeDuration.Round(time.Minute).String()},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 24, Align: text.AlignRight},
	})
	t.Render()
}

// PrintTrades renders the closed-trade ledger.
func (r *ConsoleReporter) PrintTrades(trades []*backtest.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(r.out, "No trades executed.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("TRADE LEDGER")
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Side", "Entry", "Exit", "Qty", "P&L", "Pips", "Reason"})
	for _, trade := range trades {
		t.AppendRow(table.Row{
			trade.ID,
			trade.Side.String(),
			fmt.Sprintf("%.3f", trade.EntryPrice),
			fmt.Sprintf("%.3f", trade.ExitPrice),
			trade.Quantity,
			fmt.Sprintf("%.2f", trade.PnL),
			fmt.Sprintf("%.1f", trade.PnLPips),
			trade.ExitReason,
		})
	}
	t.Render()
}

// PrintMonthlyReturns renders the per-month equity snapshots.
func (r *ConsoleReporter) PrintMonthlyReturns(months []backtest.MonthlyReturn) {
	if len(months) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("MONTHLY RETURNS")
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Month", "Start Equity", "End Equity", "Return"})
	for _, m := range months {
		t.AppendRow(table.Row{
			fmt.Sprintf("%d-%02d", m.Year, int(m.Month)),
			fmt.Sprintf("%.2f", m.StartEquity),
			fmt.Sprintf("%.2f", m.EndEquity),
			fmt.Sprintf("%+.2f%%", m.ReturnPercent),
		})
	}
	t.Render()
}

// PrintOptimization renders the grid-search outcome, best combination first.
func (r *ConsoleReporter) PrintOptimization(opt *backtest.OptimizeResult, metric string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("OPTIMIZATION RESULTS")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Combinations evaluated", opt.Evaluated},
		{"Combinations skipped", opt.Skipped},
	})
	if opt.Best != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Best " + metric, fmt.Sprintf("%.4f", opt.Best.Score)})
		for name, value := range opt.Best.Params {
			t.AppendRow(table.Row{"  " + name, fmt.Sprintf("%g", value)})
		}
	}
	t.Render()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
