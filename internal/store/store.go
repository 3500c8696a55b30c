// Package store caches fetched daily series so repeated scans within a
// trading day do not hit the market-data provider again.
package store

import (
	"context"

	"SignalScanner/internal/model"
)

// Cache stores provider responses keyed by provider symbol and lookback.
type Cache interface {
	// Get returns the cached bars for key. ok is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (bars []model.OHLCV, ok bool, err error)
	Put(ctx context.Context, key string, bars []model.OHLCV) error
	Close() error
}

// Key builds the cache key for a provider symbol and lookback window.
func Key(source, symbol, lookback string) string {
	return source + ":" + symbol + ":" + lookback
}
