package reporting

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esuzuk/fx-backtest/internal/backtest"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

func sampleResult() *backtest.Result {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 2, 0)
	return &backtest.Result{
		Pair:                    types.USDJPY,
		StrategyName:            "MovingAverageCross",
		StartTime:               start,
		EndTime:                 end,
		InitialBalance:          1_000_000,
		FinalBalance:            1_085_000,
		TotalReturnPercent:      8.5,
		AnnualizedReturnPercent: 62.1,
		MaxDrawdownPercent:      4.2,
		SharpeRatio:             1.31,
		SortinoRatio:            1.75,
		CalmarRatio:             14.8,
		TotalTrades:             2,
		WinningTrades:           2,
		WinRate:                 100,
		ProfitFactor:            math.Inf(1),
		AverageWin:              42_500,
		LargestWin:              60_000,
		AverageTradeDuration:    36 * time.Hour,
		Trades: []*backtest.Trade{
			{
				ID:         1,
				Pair:       types.USDJPY,
				Side:       types.Buy,
				EntryTime:  start.AddDate(0, 0, 3),
				EntryPrice: 150.00,
				ExitTime:   start.AddDate(0, 0, 5),
				ExitPrice:  150.60,
				Quantity:   10000,
				PnL:        60_000,
				PnLPips:    60,
				ExitReason: "take profit",
			},
			{
				ID:         2,
				Pair:       types.USDJPY,
				Side:       types.Sell,
				EntryTime:  start.AddDate(0, 1, 0),
				EntryPrice: 151.00,
				ExitTime:   start.AddDate(0, 1, 2),
				ExitPrice:  150.75,
				Quantity:   10000,
				PnL:        25_000,
				PnLPips:    25,
				ExitReason: "backtest end",
			},
		},
		EquityCurve: []backtest.EquityPoint{
			{Timestamp: start, Equity: 1_000_000},
			{Timestamp: end, Equity: 1_085_000},
		},
		MonthlyReturns: []backtest.MonthlyReturn{
			{Year: 2024, Month: time.January, StartEquity: 1_000_000, EndEquity: 1_060_000, ReturnPercent: 6.0},
			{Year: 2024, Month: time.February, StartEquity: 1_060_000, EndEquity: 1_085_000, ReturnPercent: 2.36},
		},
	}
}

func TestConsoleReporter_PrintResult(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporterTo(&buf)
	reporter.PrintResult(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "BACKTEST RESULTS")
	assert.Contains(t, out, "USD/JPY")
	assert.Contains(t, out, "MovingAverageCross")
	assert.Contains(t, out, "8.50%")
	// Infinite profit factor renders as text, not a number.
	assert.Contains(t, out, "inf")
}

func TestConsoleReporter_PrintTrades(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporterTo(&buf)
	reporter.PrintTrades(sampleResult().Trades)

	out := buf.String()
	assert.Contains(t, out, "TRADE LEDGER")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "take profit")
}

func TestConsoleReporter_PrintTrades_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleReporterTo(&buf).PrintTrades(nil)
	assert.Contains(t, buf.String(), "No trades")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, WriteJSON(sampleResult(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "USD/JPY", decoded["pair"])
	assert.InDelta(t, 8.5, decoded["total_return_pct"].(float64), 1e-9)
	// Infinity must serialize as the "inf" sentinel string.
	assert.Equal(t, "inf", decoded["profit_factor"])

	trades, ok := decoded["trades"].([]interface{})
	require.True(t, ok)
	assert.Len(t, trades, 2)
}

func TestWriteJSON_FiniteProfitFactor(t *testing.T) {
	result := sampleResult()
	result.ProfitFactor = 2.5

	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, WriteJSON(result, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.InDelta(t, 2.5, decoded["profit_factor"].(float64), 1e-9)
}

func TestWriteExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, WriteExcel(sampleResult(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
