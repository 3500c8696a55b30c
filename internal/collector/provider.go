package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"SignalScanner/internal/metrics"
	"SignalScanner/internal/model"
	"SignalScanner/internal/store"
)

// ProviderConfig configures symbol resolution and request behaviour.
type ProviderConfig struct {
	// Suffixes are tried in order; ".NS" then ".BO" resolves NSE before BSE.
	Suffixes []string
	Lookback string
	Timeout  time.Duration
	Retries  int
	Backoff  time.Duration
}

// DefaultProviderConfig returns NSE-then-BSE lookup over six months of daily bars.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Suffixes: []string{".NS", ".BO"},
		Lookback: "6mo",
		Timeout:  30 * time.Second,
		Retries:  2,
		Backoff:  500 * time.Millisecond,
	}
}

// Provider resolves a ticker to a cleaned daily series.
type Provider struct {
	Fetcher Fetcher
	Cache   store.Cache
	Metrics *metrics.Metrics
	cfg     ProviderConfig
	log     zerolog.Logger
}

// NewProvider creates a Provider. A nil cache disables caching.
func NewProvider(fetcher Fetcher, cache store.Cache, cfg ProviderConfig, m *metrics.Metrics, log zerolog.Logger) *Provider {
	if cache == nil {
		cache = store.NewNoopCache()
	}
	if len(cfg.Suffixes) == 0 {
		cfg.Suffixes = []string{""}
	}
	return &Provider{Fetcher: fetcher, Cache: cache, Metrics: m, cfg: cfg, log: log}
}

// Series returns the bars for ticker under the first suffix that has data,
// along with the resolved provider symbol. It returns ErrNoData when no
// suffix yields bars. Other errors abort the lookup for this ticker.
func (p *Provider) Series(ctx context.Context, ticker string) (string, []model.OHLCV, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", nil, fmt.Errorf("empty ticker")
	}
	for i, suffix := range p.cfg.Suffixes {
		symbol := ticker + suffix
		bars, err := p.lookup(ctx, symbol)
		if err == nil && len(bars) > 0 {
			return symbol, bars, nil
		}
		if err != nil && !errors.Is(err, ErrNoData) {
			return symbol, nil, err
		}
		if i < len(p.cfg.Suffixes)-1 {
			p.Metrics.IncFallback()
			p.log.Debug().Str("symbol", symbol).Msg("no data, trying next exchange suffix")
		}
	}
	return "", nil, ErrNoData
}

func (p *Provider) lookup(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	key := store.Key(p.Fetcher.Name(), symbol, p.cfg.Lookback)
	if bars, ok, err := p.Cache.Get(ctx, key); err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache read failed")
	} else if ok {
		p.Metrics.IncCacheHit()
		return bars, nil
	}

	bars, err := p.fetchWithRetry(ctx, symbol)
	if err != nil {
		return nil, err
	}
	bars = CleanBars(bars)
	if len(bars) > 0 {
		if err := p.Cache.Put(ctx, key, bars); err != nil {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache write failed")
		}
	}
	return bars, nil
}

// fetchWithRetry calls the fetcher with a per-attempt timeout and exponential
// backoff. ErrNoData is final and never retried.
func (p *Provider) fetchWithRetry(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	var lastErr error
	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		bars, err := p.fetchOnce(ctx, symbol)
		if err == nil || errors.Is(err, ErrNoData) {
			return bars, err
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == p.cfg.Retries {
			break
		}
		backoff := p.cfg.Backoff * time.Duration(1<<uint(attempt))
		p.log.Warn().Err(err).Str("symbol", symbol).
			Int("attempt", attempt+1).Dur("backoff", backoff).Msg("fetch failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("fetch %s: %d attempts failed: %w", symbol, p.cfg.Retries+1, lastErr)
}

func (p *Provider) fetchOnce(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	bars, err := p.Fetcher.FetchDailyBars(ctx, symbol, p.cfg.Lookback)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNoData):
		outcome = "no_data"
	case err != nil:
		outcome = "error"
	}
	p.Metrics.ObserveFetch(p.Fetcher.Name(), outcome, time.Since(start))
	return bars, err
}
