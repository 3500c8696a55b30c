package collector

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"SignalScanner/internal/model"
)

// MockFetcher serves fixed bars per symbol for development and testing.
// Symbols without an entry return ErrNoData unless Generate is set.
type MockFetcher struct {
	mu       sync.Mutex
	Bars     map[string][]model.OHLCV
	Errors   map[string]error
	Generate bool
	calls    []string
}

// NewMockFetcher creates an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Bars: map[string][]model.OHLCV{}, Errors: map[string]error{}}
}

// NewGeneratingMockFetcher creates a MockFetcher that synthesises six months
// of daily bars for any symbol without a fixed entry.
func NewGeneratingMockFetcher() *MockFetcher {
	m := NewMockFetcher()
	m.Generate = true
	return m
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol, _ string) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	bars, hasBars := m.Bars[symbol]
	err := m.Errors[symbol]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if hasBars {
		out := make([]model.OHLCV, len(bars))
		copy(out, bars)
		return out, nil
	}
	if m.Generate {
		return generateMockBars(symbol, 126), nil
	}
	return nil, ErrNoData
}

// Calls returns the symbols requested so far, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// generateMockBars produces a deterministic oscillating series seeded by the symbol name.
func generateMockBars(symbol string, count int) []model.OHLCV {
	seed := 0
	for _, r := range strings.ToUpper(symbol) {
		seed += int(r)
	}
	base := 100 + float64(seed%400)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		phase := float64(i+seed) / 9.0
		p := base * (1 + 0.05*math.Sin(phase))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1_000_000 * (1 + 0.5*math.Cos(phase*1.7)),
		}
	}
	return bars
}
