package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

func barsFromCloses(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.Bar{
			Pair:      types.USDJPY,
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out, err := SMA(values, 3)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestSMA_InvalidPeriod(t *testing.T) {
	_, err := SMA([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestEMA_SeededByFirstValue(t *testing.T) {
	values := []float64{10, 12, 14}
	out, err := EMA(values, 3)
	require.NoError(t, err)

	// alpha = 2/(3+1) = 0.5
	assert.InDelta(t, 10.0, out[0], 1e-9)
	assert.InDelta(t, 11.0, out[1], 1e-9)
	assert.InDelta(t, 12.5, out[2], 1e-9)
}

func TestWMA(t *testing.T) {
	out, err := WMA([]float64{1, 2, 3}, 3)
	require.NoError(t, err)

	// (1*1 + 2*2 + 3*3) / 6
	assert.InDelta(t, 14.0/6.0, out[2], 1e-9)
	assert.True(t, math.IsNaN(out[1]))
}

func TestRSI_AllGainsIs100(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	out, err := RSI(values, 14)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(out[13]))
	assert.InDelta(t, 100.0, out[14], 1e-9)
	assert.InDelta(t, 100.0, out[19], 1e-9)
}

func TestRSI_BoundedAndWilderSmoothed(t *testing.T) {
	values := []float64{100, 101, 100.5, 102, 101, 103, 102.5, 104, 103, 105, 104.5, 106, 105, 107, 106.5, 108}
	out, err := RSI(values, 14)
	require.NoError(t, err)
	for i := 14; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
	// Mixed gains and losses must not saturate.
	assert.Less(t, out[15], 100.0)
	assert.Greater(t, out[15], 50.0)
}

func TestMACD_HistogramIsLineMinusSignal(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + math.Sin(float64(i)/5)*3
	}
	res, err := MACD(values, 12, 26, 9)
	require.NoError(t, err)

	last := len(values) - 1
	assert.InDelta(t, res.Line[last]-res.Signal[last], res.Histogram[last], 1e-9)
}

func TestMACD_FastMustBeBelowSlow(t *testing.T) {
	_, err := MACD([]float64{1, 2, 3}, 26, 12, 9)
	assert.Error(t, err)
}

func TestATR_PositiveAfterWarmup(t *testing.T) {
	bars := barsFromCloses([]float64{150, 150.5, 149.8, 150.2, 150.9, 150.4, 151, 150.6, 151.2, 150.8, 151.5, 151, 151.8, 151.3, 152})
	atr, err := ATR(bars, 14)
	require.NoError(t, err)
	require.Len(t, atr, len(bars))

	assert.True(t, math.IsNaN(atr[13]))
	assert.Greater(t, atr[14], 0.0)
}

func TestTrueRange_FirstBarUndefined(t *testing.T) {
	bars := barsFromCloses([]float64{150, 151})
	tr := TrueRange(bars)
	assert.True(t, math.IsNaN(tr[0]))
	assert.False(t, math.IsNaN(tr[1]))
}

func TestBollingerBands(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i%5)
	}
	res, err := BollingerBands(values, 20, 2.0)
	require.NoError(t, err)

	last := len(values) - 1
	sma, _ := SMA(values, 20)
	assert.InDelta(t, sma[last], res.Middle[last], 1e-9)
	assert.Greater(t, res.Upper[last], res.Middle[last])
	assert.Less(t, res.Lower[last], res.Middle[last])
	// Symmetric around the middle band.
	assert.InDelta(t, res.Upper[last]-res.Middle[last], res.Middle[last]-res.Lower[last], 1e-9)
}

func TestADX_Bounded(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 150 + float64(i)*0.1
	}
	bars := barsFromCloses(closes)
	res, err := ADX(bars, 14)
	require.NoError(t, err)

	last := len(bars) - 1
	assert.GreaterOrEqual(t, res.ADX[last], 0.0)
	assert.LessOrEqual(t, res.ADX[last], 100.0)
	// Steady uptrend: +DI dominates -DI.
	assert.Greater(t, res.PlusDI[last], res.MinusDI[last])
}

func TestStochastic_Bounded(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 150 + math.Sin(float64(i)/3)
	}
	bars := barsFromCloses(closes)
	res, err := Stochastic(bars, 14, 3)
	require.NoError(t, err)

	last := len(bars) - 1
	assert.GreaterOrEqual(t, res.K[last], 0.0)
	assert.LessOrEqual(t, res.K[last], 100.0)
	assert.GreaterOrEqual(t, res.D[last], 0.0)
	assert.LessOrEqual(t, res.D[last], 100.0)
}

func TestWilliamsR_Bounded(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 150 + math.Cos(float64(i)/4)
	}
	bars := barsFromCloses(closes)
	out, err := WilliamsR(bars, 14)
	require.NoError(t, err)

	last := len(bars) - 1
	assert.GreaterOrEqual(t, out[last], -100.0)
	assert.LessOrEqual(t, out[last], 0.0)
}

func TestCrossAboveBelow(t *testing.T) {
	a := []float64{1, 2, 3, 2, 1}
	b := []float64{2, 2, 2, 2, 2}

	above := CrossAbove(a, b)
	below := CrossBelow(a, b)

	assert.True(t, above[2])
	assert.False(t, above[1])
	// Touching the line from above is not a downward cross; the cross
	// completes on the next bar when a moves strictly below b.
	assert.False(t, below[3])
	assert.True(t, below[4])
}

func TestGoldenCross_VShape(t *testing.T) {
	values := make([]float64, 0, 60)
	price := 150.0
	for i := 0; i < 30; i++ {
		values = append(values, price)
		price -= 0.2
	}
	for i := 0; i < 30; i++ {
		values = append(values, price)
		price += 0.3
	}

	crosses, err := GoldenCross(values, 5, 20)
	require.NoError(t, err)

	count := 0
	for _, c := range crosses {
		if c {
			count++
		}
	}
	assert.Equal(t, 1, count, "a single V reversal should produce exactly one golden cross")
}

func TestOBV(t *testing.T) {
	bars := barsFromCloses([]float64{100, 101, 100.5, 100.5, 102})
	obv := OBV(bars)

	// Up bar adds volume, down bar subtracts, flat bar holds.
	assert.InDelta(t, 0.0, obv[0], 1e-9)
	assert.InDelta(t, 1000.0, obv[1], 1e-9)
	assert.InDelta(t, 0.0, obv[2], 1e-9)
	assert.InDelta(t, 0.0, obv[3], 1e-9)
	assert.InDelta(t, 1000.0, obv[4], 1e-9)
}

func TestVWAP_BetweenExtremes(t *testing.T) {
	bars := barsFromCloses([]float64{150, 151, 152})
	vwap := VWAP(bars)
	last := len(bars) - 1
	assert.Greater(t, vwap[last], 149.0)
	assert.Less(t, vwap[last], 153.0)
}

func TestPivotPoints(t *testing.T) {
	bars := barsFromCloses([]float64{150, 151})
	res := PivotPoints(bars)
	require.NotNil(t, res)

	assert.True(t, math.IsNaN(res.Pivot[0]))

	// Derived from the prior bar: high 150.5, low 149.5, close 150.
	pivot := (150.5 + 149.5 + 150.0) / 3
	assert.InDelta(t, pivot, res.Pivot[1], 1e-9)
	assert.Greater(t, res.R1[1], res.Pivot[1])
	assert.Greater(t, res.R2[1], res.R1[1])
	assert.Less(t, res.S1[1], res.Pivot[1])
	assert.Less(t, res.S2[1], res.S1[1])
}

func TestKeltnerChannel(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 150 + math.Sin(float64(i)/4)
	}
	bars := barsFromCloses(closes)
	res, err := KeltnerChannel(bars, 20, 10, 2.0)
	require.NoError(t, err)

	last := len(bars) - 1
	assert.Greater(t, res.Upper[last], res.Middle[last])
	assert.Less(t, res.Lower[last], res.Middle[last])
}

func TestCCI_DefinedAfterWarmup(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 150 + math.Sin(float64(i)/3)*2
	}
	bars := barsFromCloses(closes)
	out, err := CCI(bars, 20)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(out[18]))
	assert.False(t, math.IsNaN(out[19]))
}

func TestLastValid(t *testing.T) {
	series := []float64{math.NaN(), 1, 2, math.NaN()}
	assert.InDelta(t, 2.0, LastValid(series), 1e-9)

	allNaN := []float64{math.NaN(), math.NaN()}
	assert.True(t, math.IsNaN(LastValid(allNaN)))
}
