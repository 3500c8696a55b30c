package collector

import (
	"net/http"
	"net/url"
	"sort"
	"time"

	"SignalScanner/internal/model"
)

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// CleanBars sorts bars by date and collapses bars sharing a calendar day,
// keeping the last one seen. The input slice is reordered in place.
func CleanBars(bars []model.OHLCV) []model.OHLCV {
	if len(bars) == 0 {
		return bars
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:1]
	for _, b := range bars[1:] {
		last := &out[len(out)-1]
		if sameDay(last.Time, b.Time) {
			*last = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
