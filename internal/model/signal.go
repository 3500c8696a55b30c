package model

import (
	"strings"
	"time"
)

// Classification is the outcome of evaluating one ticker.
type Classification string

const (
	ConfirmedBuy  Classification = "CONFIRMED_BUY"
	WeakBuy       Classification = "WEAK_BUY"
	ConfirmedSell Classification = "CONFIRMED_SELL"
	WeakSell      Classification = "WEAK_SELL"
	NoSignal      Classification = "NO_SIGNAL"
	NoData        Classification = "NO_DATA"
	Error         Classification = "ERROR"
)

// Classifications lists every classification in report order.
var Classifications = []Classification{
	ConfirmedBuy, WeakBuy, ConfirmedSell, WeakSell, NoSignal, NoData, Error,
}

// Label renders the classification the way the result table shows it,
// e.g. "CONFIRMED BUY" or "NO DATA".
func (c Classification) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// IsBuy reports whether c is a buy-side signal.
func (c Classification) IsBuy() bool { return c == ConfirmedBuy || c == WeakBuy }

// IsSell reports whether c is a sell-side signal.
func (c Classification) IsSell() bool { return c == ConfirmedSell || c == WeakSell }

// SignalResult is the per-ticker output of the signal engine.
type SignalResult struct {
	Ticker         string         `json:"ticker"`
	Symbol         string         `json:"symbol,omitempty"`
	Classification Classification `json:"classification"`
	// Latest values, taken from the last bar of the series.
	FastEMA       float64 `json:"ema_fast"`
	SlowEMA       float64 `json:"ema_slow"`
	Volume        float64 `json:"volume"`
	VolumeEMA     float64 `json:"volume_ema"`
	HasIndicators bool    `json:"has_indicators"`
	// CrossoverAt is the date of the reported crossover bar, zero when none.
	CrossoverAt time.Time `json:"crossover_at,omitempty"`
	Reason      string    `json:"reason"`
}
