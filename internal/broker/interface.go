// Package broker defines the contracts a live-trading driver fulfills. The
// backtest core never calls these; they exist so strategies and risk logic
// written against pkg/types carry over to a live driver unchanged.
package broker

import (
	"context"
	"time"

	"github.com/esuzuk/fx-backtest/pkg/types"
)

// MarketDataProvider serves bars and ticks for one instrument.
type MarketDataProvider interface {
	GetBars(ctx context.Context, pair types.CurrencyPair, timeframe string, count int) ([]types.Bar, error)
	GetTick(ctx context.Context, pair types.CurrencyPair) (types.Tick, error)
}

// OrderResult is the broker's acknowledgment of a placed order.
type OrderResult struct {
	OrderID    string
	Pair       types.CurrencyPair
	Side       types.OrderSide
	Quantity   int
	FillPrice  float64
	PlacedAt   time.Time
	Accepted   bool
	RejectText string
}

// ExecutionClient places and manages orders at a broker.
type ExecutionClient interface {
	PlaceOrder(ctx context.Context, pair types.CurrencyPair, side types.OrderSide, quantity int, stopLoss, takeProfit float64) (OrderResult, error)
	GetPositions(ctx context.Context) ([]types.Position, error)
	ClosePosition(ctx context.Context, positionID string) (bool, error)
	GetAccountInfo(ctx context.Context) (types.AccountState, error)
}
