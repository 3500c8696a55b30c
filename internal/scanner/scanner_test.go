package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/collector"
	"SignalScanner/internal/metrics"
	"SignalScanner/internal/model"
)

func flatBars(n int) []model.OHLCV {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: d.AddDate(0, 0, i), Close: 100, Volume: 1000}
	}
	return bars
}

func newMockProvider(f *collector.MockFetcher) *collector.Provider {
	cfg := collector.DefaultProviderConfig()
	cfg.Retries = 0
	return collector.NewProvider(f, nil, cfg, nil, zerolog.Nop())
}

func TestScan_IndependentOutcomesInInputOrder(t *testing.T) {
	f := collector.NewMockFetcher()
	f.Errors["BROKEN.NS"] = errors.New("provider unavailable")
	f.Bars["GOOD.NS"] = flatBars(30)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	s := New(newMockProvider(f), nil, 3, m, zerolog.Nop())

	rep, err := s.Scan(context.Background(), []string{"missing", "broken", "good"})
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)

	assert.Equal(t, "MISSING", rep.Results[0].Ticker)
	assert.Equal(t, model.NoData, rep.Results[0].Classification)
	assert.Equal(t, "Not found", rep.Results[0].Reason)

	assert.Equal(t, "BROKEN", rep.Results[1].Ticker)
	assert.Equal(t, model.Error, rep.Results[1].Classification)
	assert.Contains(t, rep.Results[1].Reason, "provider unavailable")

	assert.Equal(t, "GOOD", rep.Results[2].Ticker)
	assert.Equal(t, "GOOD.NS", rep.Results[2].Symbol)
	assert.Equal(t, model.NoSignal, rep.Results[2].Classification)
	assert.True(t, rep.Results[2].HasIndicators)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TickersTotal.WithLabelValues("ERROR")))
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))
}

func TestScan_EmptyListIsRejected(t *testing.T) {
	s := New(newMockProvider(collector.NewMockFetcher()), nil, 2, nil, zerolog.Nop())
	_, err := s.Scan(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrNoTickers)
}

// orderSource completes tickers in reverse order of submission.
type orderSource struct {
	delays map[string]time.Duration
}

func (o orderSource) Series(_ context.Context, ticker string) (string, []model.OHLCV, error) {
	time.Sleep(o.delays[ticker])
	return ticker + ".NS", flatBars(5), nil
}

func TestScan_OrderIndependentOfCompletion(t *testing.T) {
	src := orderSource{delays: map[string]time.Duration{
		"A": 40 * time.Millisecond, "B": 20 * time.Millisecond, "C": 0,
	}}
	var mu sync.Mutex
	var progress []int
	s := New(src, nil, 3, nil, zerolog.Nop())
	s.OnProgress = func(done, total int) {
		mu.Lock()
		progress = append(progress, done)
		mu.Unlock()
		assert.Equal(t, 3, total)
	}

	rep, err := s.Scan(context.Background(), []string{"A", "B", "C", "a"})
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)
	assert.Equal(t, "A", rep.Results[0].Ticker)
	assert.Equal(t, "B", rep.Results[1].Ticker)
	assert.Equal(t, "C", rep.Results[2].Ticker)
	assert.ElementsMatch(t, []int{1, 2, 3}, progress)
}

type panicSource struct{}

func (panicSource) Series(_ context.Context, ticker string) (string, []model.OHLCV, error) {
	if ticker == "BOOM" {
		panic("index out of range")
	}
	return ticker, flatBars(3), nil
}

func TestScan_PanicBecomesErrorRow(t *testing.T) {
	s := New(panicSource{}, nil, 1, nil, zerolog.Nop())
	rep, err := s.Scan(context.Background(), []string{"BOOM", "OK"})
	require.NoError(t, err)
	assert.Equal(t, model.Error, rep.Results[0].Classification)
	assert.Contains(t, rep.Results[0].Reason, "panic: index out of range")
	assert.Equal(t, model.NoSignal, rep.Results[1].Classification)
}

func TestScan_CancelledContextStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(orderSource{}, nil, 2, nil, zerolog.Nop())

	rep, err := s.Scan(ctx, []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)
	for _, r := range rep.Results {
		if r.Classification == model.Error {
			assert.Contains(t, r.Reason, "scan cancelled")
		}
	}
}

func TestOutcome_Row(t *testing.T) {
	row := Outcome{Ticker: "X", Err: errors.New("boom")}.Row()
	assert.Equal(t, model.SignalResult{Ticker: "X", Classification: model.Error, Reason: "boom"}, row)

	ok := Outcome{Ticker: "Y", Result: model.SignalResult{Ticker: "Y", Classification: model.WeakBuy}}.Row()
	assert.Equal(t, model.WeakBuy, ok.Classification)
}
