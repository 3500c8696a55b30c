package store

import (
	"context"

	"SignalScanner/internal/model"
)

// NoopCache never stores anything; used when caching is disabled.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Get(_ context.Context, _ string) ([]model.OHLCV, bool, error) {
	return nil, false, nil
}
func (n *NoopCache) Put(_ context.Context, _ string, _ []model.OHLCV) error { return nil }
func (n *NoopCache) Close() error                                         { return nil }
