package backtest

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/esuzuk/fx-backtest/internal/risk"
	"github.com/esuzuk/fx-backtest/internal/strategy"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// DefaultOptimizeMetric ranks combinations by risk-adjusted return.
const DefaultOptimizeMetric = "sharpe_ratio"

// ParamRange enumerates the values tried for one strategy parameter.
type ParamRange struct {
	Name   string
	Values []float64
}

// StrategyFactory builds a strategy from one parameter combination. A
// factory error skips the combination without aborting the search.
type StrategyFactory func(params map[string]float64) (strategy.Strategy, error)

// OptimizerConfig controls the grid search.
type OptimizerConfig struct {
	Metric     string // result field to maximize; DefaultOptimizeMetric when empty
	Workers    int    // 0 means one worker per CPU
	Backtest   Config
	RiskConfig risk.Config
}

// Combination is one evaluated grid point.
type Combination struct {
	Index  int
	Params map[string]float64
	Score  float64
	Result *Result
	Err    error
}

// OptimizeResult is the outcome of a full grid search.
type OptimizeResult struct {
	Best         *Combination
	Combinations []Combination // all grid points, in grid order
	Evaluated    int
	Skipped      int
}

// Optimizer exhaustively searches the Cartesian product of parameter
// ranges, running an independent backtest per combination. Each run derives
// its slippage seed from the base seed plus the combination index, so the
// search is deterministic regardless of worker scheduling.
type Optimizer struct {
	build  StrategyFactory
	config OptimizerConfig
}

// NewOptimizer validates the configuration and returns an optimizer.
func NewOptimizer(build StrategyFactory, config OptimizerConfig) (*Optimizer, error) {
	if build == nil {
		return nil, errors.New("optimizer: strategy factory is required")
	}
	if config.Metric == "" {
		config.Metric = DefaultOptimizeMetric
	}
	if err := config.Backtest.Validate(); err != nil {
		return nil, err
	}
	if err := config.RiskConfig.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{build: build, config: config}, nil
}

// Run evaluates every combination and returns the one maximizing the
// configured metric. Ties break toward the lower grid index so results are
// stable across runs.
func (o *Optimizer) Run(bars []types.Bar, pair types.CurrencyPair, ranges []ParamRange) (*OptimizeResult, error) {
	if len(ranges) == 0 {
		return nil, errors.New("optimizer: at least one parameter range is required")
	}
	for _, r := range ranges {
		if len(r.Values) == 0 {
			return nil, fmt.Errorf("optimizer: parameter %q has no values", r.Name)
		}
	}

	grid := cartesianProduct(ranges)
	pool := newWorkerPool(o.config.Workers, len(grid))
	pool.Start()

	submitted := 0
	for idx, params := range grid {
		strat, err := o.build(params)
		if err != nil {
			// Construction failures are recorded later as skips; they
			// never enter the pool.
			continue
		}
		cfg := o.config.Backtest
		cfg.Seed = cfg.Seed + int64(idx)
		job := runJob{
			Index:      idx,
			Params:     params,
			Strategy:   strat,
			Config:     cfg,
			RiskConfig: o.config.RiskConfig,
			Bars:       bars,
			Pair:       pair,
		}
		if err := pool.Submit(job); err != nil {
			break
		}
		submitted++
	}

	// With nothing submitted there are no results to wait for; skipping the
	// collector avoids blocking on a channel only Stop closes.
	outcomes := make([]Combination, 0, len(grid))
	if submitted > 0 {
		done := make(chan struct{})
		go func() {
			for outcome := range pool.Results() {
				combo := Combination{
					Index:  outcome.Index,
					Params: outcome.Params,
					Result: outcome.Result,
					Err:    outcome.Err,
				}
				if outcome.Err == nil && outcome.Result != nil {
					combo.Score = o.score(outcome.Result)
				}
				outcomes = append(outcomes, combo)
				if len(outcomes) == submitted {
					break
				}
			}
			close(done)
		}()
		<-done
	}
	pool.Stop()

	// Re-attach combinations whose strategy construction failed so the
	// caller sees the full grid.
	seen := make(map[int]bool, len(outcomes))
	for _, c := range outcomes {
		seen[c.Index] = true
	}
	for idx, params := range grid {
		if !seen[idx] {
			outcomes = append(outcomes, Combination{
				Index:  idx,
				Params: params,
				Err:    errors.New("strategy construction failed"),
			})
		}
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	result := &OptimizeResult{Combinations: outcomes}
	for i := range outcomes {
		c := &outcomes[i]
		if c.Err != nil {
			result.Skipped++
			continue
		}
		result.Evaluated++
		if result.Best == nil || c.Score > result.Best.Score {
			result.Best = c
		}
	}
	if result.Best == nil {
		return result, errors.New("optimizer: every combination failed")
	}
	return result, nil
}

// score reads the ranking metric from a result, treating an unknown metric
// or a non-finite value as the worst possible score.
func (o *Optimizer) score(r *Result) float64 {
	v, ok := r.Metric(o.config.Metric)
	if !ok || math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

// cartesianProduct expands parameter ranges into every combination, ordered
// with the first range varying slowest.
func cartesianProduct(ranges []ParamRange) []map[string]float64 {
	total := 1
	for _, r := range ranges {
		total *= len(r.Values)
	}
	grid := make([]map[string]float64, 0, total)
	indices := make([]int, len(ranges))
	for {
		params := make(map[string]float64, len(ranges))
		for i, r := range ranges {
			params[r.Name] = r.Values[indices[i]]
		}
		grid = append(grid, params)

		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(ranges[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return grid
		}
	}
}
