package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/esuzuk/fx-backtest/internal/backtest"
)

// WriteExcel writes a workbook with Summary, Trades, Equity Curve and
// Monthly Returns sheets.
func WriteExcel(result *backtest.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := writeTradesSheet(f, result); err != nil {
		return err
	}
	if err := writeEquitySheet(f, result); err != nil {
		return err
	}
	if err := writeMonthlySheet(f, result); err != nil {
		return err
	}
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("reporting: save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *backtest.Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Pair", string(result.Pair)},
		{"Strategy", result.StrategyName},
		{"Start", result.StartTime.Format("2006-01-02")},
		{"End", result.EndTime.Format("2006-01-02")},
		{"Initial Balance", result.InitialBalance},
		{"Final Balance", result.FinalBalance},
		{"Total Return %", result.TotalReturnPercent},
		{"Annualized Return %", result.AnnualizedReturnPercent},
		{"Max Drawdown %", result.MaxDrawdownPercent},
		{"Sharpe Ratio", result.SharpeRatio},
		{"Sortino Ratio", result.SortinoRatio},
		{"Calmar Ratio", result.CalmarRatio},
		{"Total Trades", result.TotalTrades},
		{"Winning Trades", result.WinningTrades},
		{"Losing Trades", result.LosingTrades},
		{"Win Rate %", result.WinRate},
		{"Profit Factor", excelProfitFactor(result.ProfitFactor)},
		{"Average Win", result.AverageWin},
		{"Average Loss", result.AverageLoss},
		{"Largest Win", result.LargestWin},
		{"Largest Loss", result.LargestLoss},
		{"Avg Trade Duration", result.AverageTradeDuration.String()},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 22)
}

func writeTradesSheet(f *excelize.File, result *backtest.Result) error {
	const sheet = "Trades"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"ID", "Side", "Entry Time", "Entry Price", "Exit Time", "Exit Price", "Quantity", "PnL", "PnL Pips", "Exit Reason", "Strategy", "Confidence"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, trade := range result.Trades {
		row := []interface{}{
			trade.ID,
			trade.Side.String(),
			trade.EntryTime.Format("2006-01-02 15:04"),
			trade.EntryPrice,
			trade.ExitTime.Format("2006-01-02 15:04"),
			trade.ExitPrice,
			trade.Quantity,
			trade.PnL,
			trade.PnLPips,
			trade.ExitReason,
			trade.StrategyName,
			trade.Confidence,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "L", 16)
}

func writeEquitySheet(f *excelize.File, result *backtest.Result) error {
	const sheet = "Equity Curve"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Timestamp", "Equity"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, pt := range result.EquityCurve {
		row := []interface{}{pt.Timestamp.Format("2006-01-02 15:04"), pt.Equity}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 20)
}

func writeMonthlySheet(f *excelize.File, result *backtest.Result) error {
	const sheet = "Monthly Returns"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Month", "Start Equity", "End Equity", "Return %"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, m := range result.MonthlyReturns {
		row := []interface{}{
			fmt.Sprintf("%d-%02d", m.Year, int(m.Month)),
			m.StartEquity,
			m.EndEquity,
			m.ReturnPercent,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "D", 16)
}

// excelProfitFactor keeps the workbook numeric except for the infinite
// sentinel, which Excel cannot store as a number.
func excelProfitFactor(pf float64) interface{} {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return pf
}
