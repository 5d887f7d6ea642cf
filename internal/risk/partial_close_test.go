package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

func TestNewPartialCloser_Validation(t *testing.T) {
	_, err := NewPartialCloser(DefaultCloseLevels(), 0)
	assert.Error(t, err)

	// Levels must ascend.
	_, err = NewPartialCloser([]CloseLevel{
		{ProfitPips: 60, Fraction: 0.5},
		{ProfitPips: 30, Fraction: 0.5},
	}, 1000)
	assert.Error(t, err)

	// Fractions in (0, 1].
	_, err = NewPartialCloser([]CloseLevel{{ProfitPips: 30, Fraction: 1.5}}, 1000)
	assert.Error(t, err)

	// Empty list falls back to the default ladder.
	pc, err := NewPartialCloser(nil, 1000)
	require.NoError(t, err)
	assert.NotNil(t, pc)
}

func TestPartialCloser_FiresEachLevelOnce(t *testing.T) {
	pc, err := NewPartialCloser(DefaultCloseLevels(), 1000)
	require.NoError(t, err)

	pos := types.Position{
		ID:         "p1",
		Pair:       types.USDJPY,
		Side:       types.Buy,
		EntryPrice: 150.00,
		Quantity:   10000,
	}

	// 30 pips up: first level closes half.
	qty, reason, fired := pc.Check(pos, 150.30)
	require.True(t, fired)
	assert.Equal(t, 5000, qty)
	assert.Contains(t, reason, "30")

	// Same price again: the level must not re-fire.
	_, _, fired = pc.Check(pos, 150.30)
	assert.False(t, fired)

	// 60 pips up: second level fires on the remaining logic.
	qty, _, fired = pc.Check(pos, 150.60)
	require.True(t, fired)
	assert.Equal(t, 3000, qty)

	// 100 pips: final level.
	qty, _, fired = pc.Check(pos, 151.00)
	require.True(t, fired)
	assert.Equal(t, 2000, qty)

	// Ladder exhausted.
	_, _, fired = pc.Check(pos, 152.00)
	assert.False(t, fired)
}

func TestPartialCloser_FiresAtExactThreshold(t *testing.T) {
	pc, err := NewPartialCloser([]CloseLevel{{ProfitPips: 60, Fraction: 0.5}}, 1000)
	require.NoError(t, err)

	// (150.60-150.00)/0.01 computes as 59.999... in float64; the level must
	// still fire at exactly 60 pips of profit.
	pos := types.Position{
		ID:         "edge",
		Pair:       types.USDJPY,
		Side:       types.Buy,
		EntryPrice: 150.00,
		Quantity:   10000,
	}
	qty, _, fired := pc.Check(pos, 150.60)
	require.True(t, fired)
	assert.Equal(t, 5000, qty)

	// One pip short of the threshold must not fire.
	pc.Forget("edge")
	_, _, fired = pc.Check(pos, 150.59)
	assert.False(t, fired)
}

func TestPartialCloser_ShortSide(t *testing.T) {
	pc, err := NewPartialCloser(DefaultCloseLevels(), 1000)
	require.NoError(t, err)

	pos := types.Position{
		ID:         "s1",
		Pair:       types.USDJPY,
		Side:       types.Sell,
		EntryPrice: 150.00,
		Quantity:   10000,
	}

	// Profit on a short means price falling.
	qty, _, fired := pc.Check(pos, 149.70)
	require.True(t, fired)
	assert.Equal(t, 5000, qty)

	_, _, fired = pc.Check(pos, 150.30)
	assert.False(t, fired, "a losing short must not partially close")
}

func TestPartialCloser_SkipsZeroQuantityWithoutFiring(t *testing.T) {
	pc, err := NewPartialCloser([]CloseLevel{{ProfitPips: 30, Fraction: 0.5}}, 1000)
	require.NoError(t, err)

	// Half of one lot rounds down to zero at lot granularity.
	pos := types.Position{ID: "tiny", Pair: types.USDJPY, Side: types.Buy, EntryPrice: 150.00, Quantity: 1000}
	_, _, fired := pc.Check(pos, 150.30)
	assert.False(t, fired)

	// The level did not burn: a larger position under the same ID-free check
	// logic would still fire, so verify via a fresh position.
	big := types.Position{ID: "big", Pair: types.USDJPY, Side: types.Buy, EntryPrice: 150.00, Quantity: 2000}
	qty, _, fired := pc.Check(big, 150.30)
	require.True(t, fired)
	assert.Equal(t, 1000, qty)
}

func TestPartialCloser_Forget(t *testing.T) {
	pc, err := NewPartialCloser(DefaultCloseLevels(), 1000)
	require.NoError(t, err)

	pos := types.Position{ID: "p1", Pair: types.USDJPY, Side: types.Buy, EntryPrice: 150.00, Quantity: 10000}
	_, _, fired := pc.Check(pos, 150.30)
	require.True(t, fired)

	// Forgetting the position clears fired state, as for a re-used ID.
	pc.Forget("p1")
	_, _, fired = pc.Check(pos, 150.30)
	assert.True(t, fired)
}
