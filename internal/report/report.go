// Package report holds the result of one batch scan and renders it for export.
package report

import (
	"sync"
	"time"

	"SignalScanner/internal/model"
)

// Report is the ordered set of results produced by one scan.
type Report struct {
	ID         string               `json:"id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Results    []model.SignalResult `json:"results"`
}

// Summary counts results per classification.
func (r *Report) Summary() map[model.Classification]int {
	counts := make(map[model.Classification]int, len(model.Classifications))
	for _, res := range r.Results {
		counts[res.Classification]++
	}
	return counts
}

// Filter returns the results for which keep reports true, in report order.
func (r *Report) Filter(keep func(model.SignalResult) bool) []model.SignalResult {
	var out []model.SignalResult
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// Latest holds the most recent report for readers such as the HTTP API.
type Latest struct {
	mu     sync.RWMutex
	report *Report
}

// Set replaces the held report.
func (l *Latest) Set(r *Report) {
	l.mu.Lock()
	l.report = r
	l.mu.Unlock()
}

// Get returns the held report, or nil if no scan has completed.
func (l *Latest) Get() *Report {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.report
}
