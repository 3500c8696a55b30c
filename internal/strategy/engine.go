package strategy

import (
	"fmt"

	"SignalScanner/internal/calculator"
	"SignalScanner/internal/format"
	"SignalScanner/internal/model"
)

const (
	ReasonNotFound    = "Not found"
	ReasonNoCrossover = "No EMA crossover found"
)

// Params holds the spans used by the engine and the maximum age, in bars,
// of a crossover that still produces a signal.
type Params struct {
	FastSpan     int
	SlowSpan     int
	VolumeSpan   int
	MaxSignalAge int
}

// DefaultParams returns EMA(9)/EMA(20) on close, EMA(14) on volume, 60 bars.
func DefaultParams() Params {
	return Params{FastSpan: 9, SlowSpan: 20, VolumeSpan: 14, MaxSignalAge: 60}
}

// ComputationError reports a failure while deriving indicators for a ticker.
type ComputationError struct {
	Ticker string
	Err    error
}

func (e *ComputationError) Error() string { return e.Err.Error() }

func (e *ComputationError) Unwrap() error { return e.Err }

// Engine classifies a daily series by its most recent EMA crossover.
// It holds no state between calls and is safe for concurrent use.
type Engine struct {
	Params Params
}

// NewEngine creates an Engine with the given parameters.
func NewEngine(p Params) *Engine {
	return &Engine{Params: p}
}

// Evaluate classifies bars with DefaultParams.
func Evaluate(ticker string, bars []model.OHLCV) model.SignalResult {
	return NewEngine(DefaultParams()).Evaluate(ticker, bars)
}

// Evaluate computes the indicator set for bars, locates the most recent
// crossover and classifies it by volume support and recency. Failures are
// reported as an ERROR result rather than returned.
func (e *Engine) Evaluate(ticker string, bars []model.OHLCV) model.SignalResult {
	if len(bars) == 0 {
		return model.SignalResult{Ticker: ticker, Classification: model.NoData, Reason: ReasonNotFound}
	}

	ind, err := e.indicators(ticker, bars)
	if err != nil {
		return model.SignalResult{Ticker: ticker, Classification: model.Error, Reason: err.Error()}
	}

	last := len(bars) - 1
	res := model.SignalResult{
		Ticker:        ticker,
		FastEMA:       ind.FastEMA[last],
		SlowEMA:       ind.SlowEMA[last],
		Volume:        bars[last].Volume,
		VolumeEMA:     ind.VolumeEMA[last],
		HasIndicators: true,
	}

	evt, ok := calculator.FindLastCrossover(ind.FastEMA, ind.SlowEMA)
	if !ok {
		res.Classification = model.NoSignal
		res.Reason = ReasonNoCrossover
		return res
	}

	if last-evt.Index > e.Params.MaxSignalAge {
		res.Classification = model.NoSignal
		res.Reason = fmt.Sprintf("No crossover in last %d days", e.Params.MaxSignalAge)
		return res
	}

	volCross := bars[evt.Index].Volume
	volAvgCross := ind.VolumeEMA[evt.Index]
	confirmed := volCross > volAvgCross

	res.Classification = classify(evt.Direction, confirmed)
	res.CrossoverAt = bars[evt.Index].Time
	side := "below"
	if confirmed {
		side = "above"
	}
	res.Reason = fmt.Sprintf("Most recent crossover (%s) on %s with volume %s avg (%s vs %s)",
		evt.Direction.Action(), bars[evt.Index].Time.Format("2006-01-02"), side,
		format.Volume(volCross), format.Volume(volAvgCross))
	return res
}

func (e *Engine) indicators(ticker string, bars []model.OHLCV) (*model.IndicatorSet, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, &ComputationError{Ticker: ticker, Err: fmt.Errorf("bars not in ascending date order at index %d", i)}
		}
	}
	ind, err := calculator.CalculateIndicators(bars, e.Params.FastSpan, e.Params.SlowSpan, e.Params.VolumeSpan)
	if err != nil {
		return nil, &ComputationError{Ticker: ticker, Err: err}
	}
	return ind, nil
}

func classify(d model.Direction, confirmed bool) model.Classification {
	switch {
	case d == model.DirectionUp && confirmed:
		return model.ConfirmedBuy
	case d == model.DirectionUp:
		return model.WeakBuy
	case confirmed:
		return model.ConfirmedSell
	default:
		return model.WeakSell
	}
}
