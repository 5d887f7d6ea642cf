package types

import (
	"fmt"
	"strings"
	"time"
)

// CurrencyPair identifies a tradable FX instrument.
type CurrencyPair string

const (
	USDJPY CurrencyPair = "USD/JPY"
	EURJPY CurrencyPair = "EUR/JPY"
	GBPJPY CurrencyPair = "GBP/JPY"
	AUDJPY CurrencyPair = "AUD/JPY"
	EURUSD CurrencyPair = "EUR/USD"
	GBPUSD CurrencyPair = "GBP/USD"
	AUDUSD CurrencyPair = "AUD/USD"
)

// IsJPYQuoted reports whether the pair is quoted in Japanese yen.
func (p CurrencyPair) IsJPYQuoted() bool {
	return strings.HasSuffix(string(p), "/JPY")
}

// PipSize returns the smallest quoted price increment for the pair:
// 0.01 for JPY-quoted pairs, 0.0001 otherwise.
func (p CurrencyPair) PipSize() float64 {
	if p.IsJPYQuoted() {
		return 0.01
	}
	return 0.0001
}

// OrderSide represents the direction of an order or position.
type OrderSide int

const (
	Buy OrderSide = iota
	Sell
)

func (s OrderSide) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Bar is a single OHLCV candle. Bars are produced by a data provider and
// consumed read-only.
type Bar struct {
	Pair      CurrencyPair
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Validate checks the OHLC price relationship: low <= {open, close} <= high.
func (b Bar) Validate() error {
	if b.High < b.Low {
		return fmt.Errorf("bar %s at %s: high %.5f below low %.5f", b.Pair, b.Timestamp, b.High, b.Low)
	}
	if b.Open < b.Low || b.Open > b.High {
		return fmt.Errorf("bar %s at %s: open %.5f outside [low, high]", b.Pair, b.Timestamp, b.Open)
	}
	if b.Close < b.Low || b.Close > b.High {
		return fmt.Errorf("bar %s at %s: close %.5f outside [low, high]", b.Pair, b.Timestamp, b.Close)
	}
	return nil
}

// Tick is a single bid/ask quote.
type Tick struct {
	Pair      CurrencyPair
	Bid       float64
	Ask       float64
	Timestamp time.Time
}

// Spread returns ask - bid.
func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

// Mid returns the bid/ask midpoint.
func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Position is an open holding as seen by the execution collaborator.
// Quantity is in currency units and is always a multiple of the lot unit.
type Position struct {
	ID           string
	Pair         CurrencyPair
	Side         OrderSide
	Quantity     int
	EntryTime    time.Time
	EntryPrice   float64
	CurrentPrice float64
	StopLoss     float64 // 0 means no stop attached
	TakeProfit   float64 // 0 means no target attached
}

// AccountState is a snapshot of account balances and margin. Equity and
// margin figures are recomputed from current marks, never cached across bars.
type AccountState struct {
	Balance         float64
	Equity          float64
	MarginUsed      float64
	MarginAvailable float64
	MarginLevel     float64 // percent; 0 when unknown (no margin used)
	UnrealizedPnL   float64
}
