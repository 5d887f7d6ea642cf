package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/esuzuk/fx-backtest/internal/backtest"
	"github.com/esuzuk/fx-backtest/internal/risk"
	"github.com/esuzuk/fx-backtest/internal/strategy"
	"github.com/esuzuk/fx-backtest/pkg/data"
	"github.com/esuzuk/fx-backtest/pkg/reporting"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

const (
	appName    = "FX Backtest"
	appVersion = "1.0.0"
)

func main() {
	flags := NewFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", appName, appVersion)
		return
	}
	if err := flags.Validate(); err != nil {
		log.Fatalf("flag error: %v", err)
	}
	loadEnvironment(*flags.EnvFile)

	pair := types.CurrencyPair(*flags.Pair)
	bars, err := loadBars(flags, pair)
	if err != nil {
		log.Fatalf("data error: %v", err)
	}
	log.Printf("loaded %d bars for %s", len(bars), pair)

	btConfig := backtest.DefaultConfig()
	btConfig.InitialBalance = *flags.InitialBalance
	btConfig.SpreadPips = *flags.SpreadPips
	btConfig.SlippagePips = *flags.SlippagePips
	btConfig.CommissionPerLot = *flags.Commission
	btConfig.UseTrailingStop = *flags.TrailingStop
	btConfig.Seed = *flags.Seed

	riskConfig := risk.DefaultConfig()
	riskConfig.RiskPerTrade = *flags.RiskPerTrade
	riskConfig.MaxOpenPositions = *flags.MaxPositions

	if *flags.Optimize != "" {
		runOptimization(flags, bars, pair, btConfig, riskConfig)
		return
	}
	runSingle(flags, bars, pair, btConfig, riskConfig)
}

func runSingle(flags *Flags, bars []types.Bar, pair types.CurrencyPair, btConfig backtest.Config, riskConfig risk.Config) {
	strat, err := strategy.New(*flags.Strategy)
	if err != nil {
		log.Fatalf("strategy error: %v", err)
	}
	engine, err := backtest.NewEngine(strat, riskConfig, btConfig)
	if err != nil {
		log.Fatalf("engine error: %v", err)
	}
	result, err := engine.Run(bars, pair)
	if err != nil {
		log.Fatalf("backtest error: %v", err)
	}

	console := reporting.NewConsoleReporter()
	console.PrintResult(result)
	if *flags.Trades {
		console.PrintTrades(result.Trades)
	}
	if *flags.Monthly {
		console.PrintMonthlyReturns(result.MonthlyReturns)
	}
	writeOutputs(flags, result)
}

func runOptimization(flags *Flags, bars []types.Bar, pair types.CurrencyPair, btConfig backtest.Config, riskConfig risk.Config) {
	ranges, err := ParseOptimizeRanges(*flags.Optimize)
	if err != nil {
		log.Fatalf("optimize error: %v", err)
	}
	factory, err := factoryFor(*flags.Strategy)
	if err != nil {
		log.Fatalf("strategy error: %v", err)
	}

	optimizer, err := backtest.NewOptimizer(factory, backtest.OptimizerConfig{
		Metric:     *flags.Metric,
		Backtest:   btConfig,
		RiskConfig: riskConfig,
	})
	if err != nil {
		log.Fatalf("optimizer error: %v", err)
	}
	opt, err := optimizer.Run(bars, pair, ranges)
	if err != nil {
		log.Fatalf("optimization error: %v", err)
	}

	console := reporting.NewConsoleReporter()
	console.PrintOptimization(opt, *flags.Metric)
	if opt.Best != nil && opt.Best.Result != nil {
		console.PrintResult(opt.Best.Result)
		writeOutputs(flags, opt.Best.Result)
	}
}

// factoryFor maps optimizer parameter names onto each strategy's
// constructor. Missing parameters fall back to the registry defaults.
func factoryFor(name string) (backtest.StrategyFactory, error) {
	switch name {
	case "ma_cross":
		return func(p map[string]float64) (strategy.Strategy, error) {
			return strategy.NewMovingAverageCross(intParam(p, "short", 20), intParam(p, "long", 50))
		}, nil
	case "rsi_reversal":
		return func(p map[string]float64) (strategy.Strategy, error) {
			return strategy.NewRSIMeanReversion(intParam(p, "period", 14), floatParam(p, "oversold", 30), floatParam(p, "overbought", 70))
		}, nil
	case "bollinger":
		return func(p map[string]float64) (strategy.Strategy, error) {
			return strategy.NewBollingerBand(intParam(p, "period", 20), floatParam(p, "stddev", 2.0))
		}, nil
	case "macd":
		return func(p map[string]float64) (strategy.Strategy, error) {
			return strategy.NewMACDCross(intParam(p, "fast", 12), intParam(p, "slow", 26), intParam(p, "signal", 9))
		}, nil
	case "trend_following":
		return func(p map[string]float64) (strategy.Strategy, error) {
			return strategy.NewTrendFollowing(intParam(p, "adx_period", 14), floatParam(p, "adx_threshold", 25), intParam(p, "ma_period", 50))
		}, nil
	case "combined":
		return func(p map[string]float64) (strategy.Strategy, error) {
			return strategy.NewCombinedDefault(intParam(p, "min_agreement", 2))
		}, nil
	default:
		return nil, fmt.Errorf("strategy %q does not support optimization", name)
	}
}

func intParam(params map[string]float64, name string, fallback int) int {
	if v, ok := params[name]; ok {
		return int(v)
	}
	return fallback
}

func floatParam(params map[string]float64, name string, fallback float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return fallback
}

func loadBars(flags *Flags, pair types.CurrencyPair) ([]types.Bar, error) {
	if *flags.Sample {
		cfg := data.DefaultSampleConfig()
		cfg.Pair = pair
		cfg.Seed = *flags.Seed
		return data.GenerateSampleBars(cfg), nil
	}
	provider := data.NewCSVProvider()
	return provider.LoadBars(*flags.DataFile, pair)
}

func writeOutputs(flags *Flags, result *backtest.Result) {
	if *flags.JSONOut != "" {
		if err := reporting.WriteJSON(result, *flags.JSONOut); err != nil {
			log.Printf("json output failed: %v", err)
		} else {
			log.Printf("wrote %s", *flags.JSONOut)
		}
	}
	if *flags.ExcelOut != "" {
		if err := reporting.WriteExcel(result, *flags.ExcelOut); err != nil {
			log.Printf("excel output failed: %v", err)
		} else {
			log.Printf("wrote %s", *flags.ExcelOut)
		}
	}
}

func loadEnvironment(envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("could not load env file %s: %v", envFile, err)
		}
		return
	}
	// Best effort default; a missing .env is fine.
	_ = godotenv.Load()
}
