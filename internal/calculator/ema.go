package calculator

import (
	"errors"
	"fmt"
	"math"

	"SignalScanner/internal/model"
)

var (
	// ErrInvalidSpan is returned when an EMA span is not positive.
	ErrInvalidSpan = errors.New("span must be positive")
	// ErrNonFinite is returned when an input value is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
)

// CalculateEMA computes the exponential moving average of values over the given span.
// The first output equals the first input; no SMA warm-up is applied.
// The result has the same length as values.
func CalculateEMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, ErrInvalidSpan
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
		if i == 0 {
			out[0] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out, nil
}

// CalculateIndicators derives the fast/slow price EMAs and the volume EMA for bars.
func CalculateIndicators(bars []model.OHLCV, fastSpan, slowSpan, volumeSpan int) (*model.IndicatorSet, error) {
	closes := model.Closes(bars)
	fast, err := CalculateEMA(closes, fastSpan)
	if err != nil {
		return nil, fmt.Errorf("close EMA(%d): %w", fastSpan, err)
	}
	slow, err := CalculateEMA(closes, slowSpan)
	if err != nil {
		return nil, fmt.Errorf("close EMA(%d): %w", slowSpan, err)
	}
	vol, err := CalculateEMA(model.Volumes(bars), volumeSpan)
	if err != nil {
		return nil, fmt.Errorf("volume EMA(%d): %w", volumeSpan, err)
	}
	return &model.IndicatorSet{FastEMA: fast, SlowEMA: slow, VolumeEMA: vol}, nil
}
