package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

const sampleCSV = `timestamp,open,high,low,close,volume
2024-01-01T00:00:00Z,150.00,150.50,149.80,150.30,1200
2024-01-01T01:00:00Z,150.30,150.90,150.10,150.70,1500
2024-01-01T02:00:00Z,150.70,150.80,150.20,150.40,900
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVProvider_LoadBars(t *testing.T) {
	provider := NewCSVProvider()
	path := writeTempCSV(t, sampleCSV)

	bars, err := provider.LoadBars(path, types.USDJPY)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, types.USDJPY, bars[0].Pair)
	assert.InDelta(t, 150.00, bars[0].Open, 1e-9)
	assert.InDelta(t, 150.50, bars[0].High, 1e-9)
	assert.InDelta(t, 149.80, bars[0].Low, 1e-9)
	assert.InDelta(t, 150.30, bars[0].Close, 1e-9)
	assert.InDelta(t, 1200.0, bars[0].Volume, 1e-9)
	assert.True(t, bars[1].Timestamp.After(bars[0].Timestamp))
}

func TestCSVProvider_SkipsMalformedRows(t *testing.T) {
	provider := NewCSVProvider()
	path := writeTempCSV(t, sampleCSV+"not-a-date,1,2,0,1,5\n2024-01-01T03:00:00Z,150.40,150.60,150.30,150.50,800\n")

	bars, err := provider.LoadBars(path, types.USDJPY)
	require.NoError(t, err)
	assert.Len(t, bars, 4)
}

func TestCSVProvider_MissingFile(t *testing.T) {
	provider := NewCSVProvider()
	_, err := provider.LoadBars(filepath.Join(t.TempDir(), "nope.csv"), types.USDJPY)
	assert.Error(t, err)
}

func TestCSVProvider_EmptyFileErrors(t *testing.T) {
	provider := NewCSVProvider()
	path := writeTempCSV(t, "timestamp,open,high,low,close,volume\n")
	_, err := provider.LoadBars(path, types.USDJPY)
	assert.Error(t, err)
}

func TestValidateBars(t *testing.T) {
	cfg := DefaultSampleConfig()
	cfg.Bars = 50
	bars := GenerateSampleBars(cfg)
	require.NoError(t, ValidateBars(bars))

	// Out-of-order timestamps are rejected.
	swapped := append([]types.Bar(nil), bars...)
	swapped[10], swapped[20] = swapped[20], swapped[10]
	assert.Error(t, ValidateBars(swapped))

	assert.Error(t, ValidateBars(nil))
}

func TestGenerateSampleBars_Deterministic(t *testing.T) {
	cfg := DefaultSampleConfig()
	cfg.Bars = 100

	first := GenerateSampleBars(cfg)
	second := GenerateSampleBars(cfg)
	require.Len(t, first, 100)

	for i := range first {
		assert.Equal(t, first[i].Close, second[i].Close, "bar %d", i)
		assert.Equal(t, first[i].Volume, second[i].Volume, "bar %d", i)
	}

	cfg.Seed = 7
	third := GenerateSampleBars(cfg)
	differs := false
	for i := range first {
		if first[i].Close != third[i].Close {
			differs = true
			break
		}
	}
	assert.True(t, differs, "a different seed should generate a different series")
}

func TestGenerateSampleBars_ValidOHLC(t *testing.T) {
	cfg := DefaultSampleConfig()
	cfg.Bars = 200
	bars := GenerateSampleBars(cfg)
	for i, bar := range bars {
		require.NoError(t, bar.Validate(), "bar %d", i)
	}
}
