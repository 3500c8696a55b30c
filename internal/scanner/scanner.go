// Package scanner drives a batch of tickers through the series provider and
// the signal engine, isolating failures per ticker.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"SignalScanner/internal/collector"
	"SignalScanner/internal/metrics"
	"SignalScanner/internal/model"
	"SignalScanner/internal/report"
	"SignalScanner/internal/strategy"
	"SignalScanner/internal/tickers"
)

// ErrNoTickers is returned when a scan is requested for an empty list.
var ErrNoTickers = errors.New("no tickers to scan")

// SeriesSource resolves a ticker to a daily series; *collector.Provider implements it.
type SeriesSource interface {
	Series(ctx context.Context, ticker string) (symbol string, bars []model.OHLCV, err error)
}

// Outcome is the per-ticker result of the batch: either an engine result or
// the error that prevented one.
type Outcome struct {
	Ticker string
	Result model.SignalResult
	Err    error
}

// Row converts the outcome into a report row; errors become ERROR results.
func (o Outcome) Row() model.SignalResult {
	if o.Err != nil {
		return model.SignalResult{Ticker: o.Ticker, Classification: model.Error, Reason: o.Err.Error()}
	}
	return o.Result
}

// Scanner evaluates tickers with a fixed-size worker pool.
type Scanner struct {
	Source     SeriesSource
	Engine     *strategy.Engine
	Workers    int
	Metrics    *metrics.Metrics
	OnProgress func(done, total int)
	log        zerolog.Logger
	seq        atomic.Uint64
}

// New creates a Scanner. workers below 1 are treated as 1.
func New(source SeriesSource, engine *strategy.Engine, workers int, m *metrics.Metrics, log zerolog.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	if engine == nil {
		engine = strategy.NewEngine(strategy.DefaultParams())
	}
	return &Scanner{Source: source, Engine: engine, Workers: workers, Metrics: m, log: log}
}

// Scan evaluates every ticker and returns a report in input order. Tickers are
// normalised first; an empty list returns ErrNoTickers before any work starts.
// When ctx is cancelled no further tickers are scheduled and their rows are
// reported as ERROR.
func (s *Scanner) Scan(ctx context.Context, list []string) (*report.Report, error) {
	list = tickers.Normalize(list)
	if len(list) == 0 {
		return nil, ErrNoTickers
	}

	rep := &report.Report{
		ID:        s.nextID(),
		StartedAt: time.Now(),
		Results:   make([]model.SignalResult, len(list)),
	}
	s.log.Info().Str("scan_id", rep.ID).Int("tickers", len(list)).Int("workers", s.Workers).Msg("scan started")

	scheduled := make([]bool, len(list))
	jobs := make(chan int)
	var wg sync.WaitGroup
	var done atomic.Int64

	workers := s.Workers
	if workers > len(list) {
		workers = len(list)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rep.Results[i] = s.evaluate(ctx, list[i]).Row()
				s.Metrics.ObserveResult(rep.Results[i].Classification)
				if s.OnProgress != nil {
					s.OnProgress(int(done.Add(1)), len(list))
				}
			}
		}()
	}

schedule:
	for i := range list {
		select {
		case <-ctx.Done():
			break schedule
		case jobs <- i:
			scheduled[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	for i, ok := range scheduled {
		if !ok {
			rep.Results[i] = Outcome{Ticker: list[i], Err: fmt.Errorf("scan cancelled: %w", ctx.Err())}.Row()
			s.Metrics.ObserveResult(model.Error)
		}
	}

	rep.FinishedAt = time.Now()
	s.Metrics.ObserveScan(rep.StartedAt, rep.FinishedAt)
	s.log.Info().Str("scan_id", rep.ID).Dur("elapsed", rep.FinishedAt.Sub(rep.StartedAt)).
		Interface("summary", rep.Summary()).Msg("scan finished")
	return rep, nil
}

// evaluate runs one ticker. Panics are recovered into the outcome so that a
// single ticker can never abort the batch.
func (s *Scanner) evaluate(ctx context.Context, ticker string) (out Outcome) {
	out.Ticker = ticker
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
			s.log.Error().Str("ticker", ticker).Interface("panic", r).Msg("ticker evaluation panicked")
		}
	}()

	symbol, bars, err := s.Source.Series(ctx, ticker)
	if err != nil && !errors.Is(err, collector.ErrNoData) {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("series lookup failed")
		out.Err = err
		return out
	}
	out.Result = s.Engine.Evaluate(ticker, bars)
	out.Result.Symbol = symbol
	s.log.Debug().Str("ticker", ticker).Str("symbol", symbol).
		Str("signal", string(out.Result.Classification)).Msg("ticker evaluated")
	return out
}

func (s *Scanner) nextID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + strconv.FormatUint(s.seq.Add(1), 10)
}
