package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/esuzuk/fx-backtest/internal/backtest"
)

// Flags holds all command line options for the backtest command.
type Flags struct {
	// Data
	DataFile *string
	Pair     *string
	Sample   *bool

	// Strategy
	Strategy *string

	// Simulation
	InitialBalance *float64
	SpreadPips     *float64
	SlippagePips   *float64
	Commission     *float64
	Seed           *int64
	TrailingStop   *bool

	// Risk
	RiskPerTrade *float64
	MaxPositions *int

	// Optimization
	Optimize *string // comma-separated name=v1:v2:... ranges
	Metric   *string

	// Output
	JSONOut  *string
	ExcelOut *string
	Trades   *bool
	Monthly  *bool

	EnvFile     *string
	ShowVersion *bool
}

// NewFlags registers all flags with the default flag set.
func NewFlags() *Flags {
	return &Flags{
		DataFile: flag.String("data", "", "CSV file with historical bars"),
		Pair:     flag.String("pair", "USD/JPY", "currency pair"),
		Sample:   flag.Bool("sample", false, "run against generated sample data"),

		Strategy: flag.String("strategy", "ma_cross", "strategy name (ma_cross, rsi_reversal, bollinger, macd, trend_following, combined)"),

		InitialBalance: flag.Float64("balance", 1_000_000, "initial account balance"),
		SpreadPips:     flag.Float64("spread", 0.3, "synthetic spread in pips"),
		SlippagePips:   flag.Float64("slippage", 0.1, "maximum slippage in pips"),
		Commission:     flag.Float64("commission", 0, "commission per 10,000-unit lot"),
		Seed:           flag.Int64("seed", 1, "random seed for slippage sampling"),
		TrailingStop:   flag.Bool("trailing", false, "enable trailing stops"),

		RiskPerTrade: flag.Float64("risk", 0.02, "fraction of balance risked per trade"),
		MaxPositions: flag.Int("max-positions", 3, "maximum concurrent open positions"),

		Optimize: flag.String("optimize", "", "parameter grid, e.g. short=5:10:20,long=50:100"),
		Metric:   flag.String("metric", backtest.DefaultOptimizeMetric, "result field to maximize when optimizing"),

		JSONOut:  flag.String("json", "", "write full result to this JSON file"),
		ExcelOut: flag.String("excel", "", "write workbook to this xlsx file"),
		Trades:   flag.Bool("trades", false, "print the trade ledger"),
		Monthly:  flag.Bool("monthly", false, "print monthly returns"),

		EnvFile:     flag.String("env", "", "env file to load before running"),
		ShowVersion: flag.Bool("version", false, "print version and exit"),
	}
}

// Validate rejects inconsistent flag combinations.
func (f *Flags) Validate() error {
	if *f.DataFile == "" && !*f.Sample {
		return fmt.Errorf("either -data or -sample is required")
	}
	if *f.DataFile != "" && *f.Sample {
		return fmt.Errorf("-data and -sample are mutually exclusive")
	}
	return nil
}

// ParseOptimizeRanges parses the -optimize grammar:
// name=v1:v2:v3 pairs separated by commas.
func ParseOptimizeRanges(spec string) ([]backtest.ParamRange, error) {
	var ranges []backtest.ParamRange
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, valueList, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad range %q: want name=v1:v2:...", part)
		}
		var values []float64
		for _, raw := range strings.Split(valueList, ":") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q in range %q: %w", raw, name, err)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("range %q has no values", name)
		}
		ranges = append(ranges, backtest.ParamRange{Name: strings.TrimSpace(name), Values: values})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("empty optimize spec")
	}
	return ranges, nil
}
