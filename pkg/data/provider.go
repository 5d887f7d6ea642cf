// Package data loads and validates the historical bar series fed into the
// backtest engine.
package data

import (
	"fmt"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// Provider loads a historical bar series from some source.
type Provider interface {
	// LoadBars loads the full bar series for one pair from the given source
	// (a file path for file-backed providers).
	LoadBars(source string, pair types.CurrencyPair) ([]types.Bar, error)
	Name() string
}

// ValidateBars checks OHLC consistency and chronological order across a
// loaded series.
func ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("data: no bars loaded")
	}
	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return fmt.Errorf("data: bar %d: %w", i, err)
		}
		if i > 0 && bar.Timestamp.Before(bars[i-1].Timestamp) {
			return fmt.Errorf("data: bar %d out of chronological order", i)
		}
	}
	return nil
}
