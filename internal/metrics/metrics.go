// Package metrics exposes Prometheus instrumentation for scans and fetches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"SignalScanner/internal/model"
)

// Metrics holds all Prometheus metrics for the scanner. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	ScansTotal     prometheus.Counter
	TickersTotal   *prometheus.CounterVec // labels: classification
	ScanDuration   prometheus.Histogram
	FetchDuration  *prometheus.HistogramVec // labels: source, outcome
	FallbacksTotal prometheus.Counter
	CacheHits      prometheus.Counter
	LastScanTime   prometheus.Gauge
}

// NewMetrics creates all metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_scans_total",
			Help: "Total batch scans completed",
		}),
		TickersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_tickers_total",
			Help: "Tickers evaluated, by classification",
		}, []string{"classification"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_scan_duration_seconds",
			Help:    "Wall time of a batch scan",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scanner_fetch_duration_seconds",
			Help:    "Market-data fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "outcome"}),
		FallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_fetch_fallbacks_total",
			Help: "Lookups that moved on to the next exchange suffix",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scanner_cache_hits_total",
			Help: "Series served from the bar cache",
		}),
		LastScanTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_last_scan_timestamp_seconds",
			Help: "Unix time of the last completed scan",
		}),
	}
	reg.MustRegister(
		m.ScansTotal, m.TickersTotal, m.ScanDuration,
		m.FetchDuration, m.FallbacksTotal, m.CacheHits, m.LastScanTime,
	)
	return m
}

// ObserveResult counts one evaluated ticker.
func (m *Metrics) ObserveResult(c model.Classification) {
	if m == nil {
		return
	}
	m.TickersTotal.WithLabelValues(string(c)).Inc()
}

// ObserveScan records a finished batch.
func (m *Metrics) ObserveScan(started, finished time.Time) {
	if m == nil {
		return
	}
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(finished.Sub(started).Seconds())
	m.LastScanTime.Set(float64(finished.Unix()))
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source, outcome).Observe(d.Seconds())
}

// IncFallback counts a move to the next exchange suffix.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.FallbacksTotal.Inc()
}

// IncCacheHit counts a cache hit.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}
