package backtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esuzuk/fx-backtest/internal/risk"
	"github.com/esuzuk/fx-backtest/internal/strategy"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

func TestCartesianProduct(t *testing.T) {
	ranges := []ParamRange{
		{Name: "a", Values: []float64{1, 2}},
		{Name: "b", Values: []float64{10, 20, 30}},
	}
	grid := cartesianProduct(ranges)
	require.Len(t, grid, 6)

	// First range varies slowest.
	assert.Equal(t, map[string]float64{"a": 1, "b": 10}, grid[0])
	assert.Equal(t, map[string]float64{"a": 1, "b": 30}, grid[2])
	assert.Equal(t, map[string]float64{"a": 2, "b": 10}, grid[3])
	assert.Equal(t, map[string]float64{"a": 2, "b": 30}, grid[5])
}

func TestCartesianProduct_SingleRange(t *testing.T) {
	grid := cartesianProduct([]ParamRange{{Name: "x", Values: []float64{5}}})
	require.Len(t, grid, 1)
	assert.Equal(t, 5.0, grid[0]["x"])
}

func alternatingFactory(params map[string]float64) (strategy.Strategy, error) {
	interval := int(params["interval"])
	if interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	return alternating{interval: interval}, nil
}

func TestNewOptimizer_Validation(t *testing.T) {
	_, err := NewOptimizer(nil, OptimizerConfig{Backtest: DefaultConfig(), RiskConfig: risk.DefaultConfig()})
	assert.Error(t, err)

	bad := DefaultConfig()
	bad.InitialBalance = 0
	_, err = NewOptimizer(alternatingFactory, OptimizerConfig{Backtest: bad, RiskConfig: risk.DefaultConfig()})
	assert.Error(t, err)
}

func TestOptimizer_FindsBestCombination(t *testing.T) {
	optimizer, err := NewOptimizer(alternatingFactory, OptimizerConfig{
		Backtest:   DefaultConfig(),
		RiskConfig: risk.DefaultConfig(),
		Workers:    2,
	})
	require.NoError(t, err)

	bars := testBars(waveCloses(300))
	opt, err := optimizer.Run(bars, types.USDJPY, []ParamRange{
		{Name: "interval", Values: []float64{8, 12, 16}},
	})
	require.NoError(t, err)

	require.NotNil(t, opt.Best)
	assert.Equal(t, 3, opt.Evaluated)
	assert.Zero(t, opt.Skipped)
	require.NotNil(t, opt.Best.Result)

	// The winner's score must dominate every other evaluated combination.
	for _, combo := range opt.Combinations {
		if combo.Err != nil {
			continue
		}
		assert.LessOrEqual(t, combo.Score, opt.Best.Score)
	}
}

func TestOptimizer_SkipsFailingCombinations(t *testing.T) {
	optimizer, err := NewOptimizer(alternatingFactory, OptimizerConfig{
		Backtest:   DefaultConfig(),
		RiskConfig: risk.DefaultConfig(),
	})
	require.NoError(t, err)

	bars := testBars(waveCloses(300))
	// Zero interval makes the factory fail for one combination.
	opt, err := optimizer.Run(bars, types.USDJPY, []ParamRange{
		{Name: "interval", Values: []float64{0, 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, opt.Evaluated)
	assert.Equal(t, 1, opt.Skipped)
	require.NotNil(t, opt.Best)
	assert.Equal(t, 10.0, opt.Best.Params["interval"])
}

func TestOptimizer_AllCombinationsFailing(t *testing.T) {
	optimizer, err := NewOptimizer(alternatingFactory, OptimizerConfig{
		Backtest:   DefaultConfig(),
		RiskConfig: risk.DefaultConfig(),
	})
	require.NoError(t, err)

	bars := testBars(waveCloses(300))
	opt, err := optimizer.Run(bars, types.USDJPY, []ParamRange{
		{Name: "interval", Values: []float64{0, -1}},
	})
	assert.Error(t, err)

	// The search must still return promptly with the full grid marked skipped.
	require.NotNil(t, opt)
	assert.Nil(t, opt.Best)
	assert.Zero(t, opt.Evaluated)
	assert.Equal(t, 2, opt.Skipped)
	require.Len(t, opt.Combinations, 2)
	for _, combo := range opt.Combinations {
		assert.Error(t, combo.Err)
	}
}

func TestOptimizer_EmptyRanges(t *testing.T) {
	optimizer, err := NewOptimizer(alternatingFactory, OptimizerConfig{
		Backtest:   DefaultConfig(),
		RiskConfig: risk.DefaultConfig(),
	})
	require.NoError(t, err)

	_, err = optimizer.Run(nil, types.USDJPY, nil)
	assert.Error(t, err)

	_, err = optimizer.Run(nil, types.USDJPY, []ParamRange{{Name: "x"}})
	assert.Error(t, err)
}

func TestOptimizer_Deterministic(t *testing.T) {
	bars := testBars(waveCloses(300))
	ranges := []ParamRange{{Name: "interval", Values: []float64{8, 12, 16}}}

	run := func(workers int) *OptimizeResult {
		optimizer, err := NewOptimizer(alternatingFactory, OptimizerConfig{
			Backtest:   DefaultConfig(),
			RiskConfig: risk.DefaultConfig(),
			Workers:    workers,
		})
		require.NoError(t, err)
		opt, err := optimizer.Run(bars, types.USDJPY, ranges)
		require.NoError(t, err)
		return opt
	}

	// Worker count must not change the outcome: each combination derives its
	// seed from its grid index, not from scheduling order.
	serial := run(1)
	parallel := run(4)

	require.NotNil(t, serial.Best)
	require.NotNil(t, parallel.Best)
	assert.Equal(t, serial.Best.Index, parallel.Best.Index)
	assert.Equal(t, serial.Best.Score, parallel.Best.Score)
	for i := range serial.Combinations {
		assert.Equal(t, serial.Combinations[i].Score, parallel.Combinations[i].Score)
	}
}
