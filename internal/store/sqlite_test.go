package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), ttl, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleBars() []model.OHLCV {
	d := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	return []model.OHLCV{
		{Time: d, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1200},
		{Time: d.AddDate(0, 0, 1), Open: 10.5, High: 12, Low: 10, Close: 11.75, Volume: 3400},
	}
}

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on empty cache", func(t *testing.T) {
		c := newTestCache(t, time.Hour)
		_, ok, err := c.Get(ctx, Key("yahoo", "TCS.NS", "6mo"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("round trips bars", func(t *testing.T) {
		c := newTestCache(t, time.Hour)
		key := Key("yahoo", "TCS.NS", "6mo")
		require.NoError(t, c.Put(ctx, key, sampleBars()))

		got, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, got, 2)
		assert.Equal(t, 11.75, got[1].Close)
		assert.True(t, got[0].Time.Equal(sampleBars()[0].Time))
	})

	t.Run("put overwrites existing key", func(t *testing.T) {
		c := newTestCache(t, time.Hour)
		key := Key("yahoo", "IOC.NS", "6mo")
		require.NoError(t, c.Put(ctx, key, sampleBars()))
		require.NoError(t, c.Put(ctx, key, sampleBars()[:1]))

		got, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, got, 1)
	})

	t.Run("expired entries are misses and pruned", func(t *testing.T) {
		c := newTestCache(t, time.Hour)
		key := Key("yahoo", "SBIN.NS", "6mo")
		require.NoError(t, c.Put(ctx, key, sampleBars()))

		c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := c.Prune(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	require.NoError(t, c.Put(context.Background(), "k", sampleBars()))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
