package collector

import (
	"context"
	"errors"

	"SignalScanner/internal/model"
)

// ErrNoData is returned when the provider has no series for a symbol.
var ErrNoData = errors.New("no data")

// Fetcher defines the interface for fetching daily bars from a market-data provider.
type Fetcher interface {
	// FetchDailyBars returns daily bars for symbol over lookback (e.g. "6mo"),
	// ascending by date. It returns ErrNoData when the symbol is unknown.
	FetchDailyBars(ctx context.Context, symbol, lookback string) ([]model.OHLCV, error)
	Name() string
}
