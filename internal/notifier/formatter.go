package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalScanner/internal/format"
	"SignalScanner/internal/model"
	"SignalScanner/internal/report"
)

// FormatScanSummary formats a scan report into a Telegram HTML message:
// counts per classification followed by every buy and sell row.
func FormatScanSummary(rep *report.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>EMA9/EMA20 scan</b> | %s\n", rep.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("%d tickers scanned\n\n", len(rep.Results)))

	counts := rep.Summary()
	for _, c := range model.Classifications {
		if n := counts[c]; n > 0 {
			b.WriteString(fmt.Sprintf("%s: %d\n", c.Label(), n))
		}
	}

	writeSection := func(title string, rows []model.SignalResult) {
		if len(rows) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", title))
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("• %s <b>%s</b> EMA9 %s / EMA20 %s, vol %s vs %s\n",
				html.EscapeString(r.Ticker), r.Classification.Label(),
				format.Price(r.FastEMA), format.Price(r.SlowEMA),
				format.Volume(r.Volume), format.Volume(r.VolumeEMA)))
			if !r.CrossoverAt.IsZero() {
				b.WriteString(fmt.Sprintf("   crossed %s\n", r.CrossoverAt.Format("2006-01-02")))
			}
		}
	}
	writeSection("🟢 Buy signals", rep.Filter(func(r model.SignalResult) bool { return r.Classification.IsBuy() }))
	writeSection("🔴 Sell signals", rep.Filter(func(r model.SignalResult) bool { return r.Classification.IsSell() }))

	if failed := rep.Filter(func(r model.SignalResult) bool { return r.Classification == model.Error }); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, r := range failed {
			names[i] = html.EscapeString(r.Ticker)
		}
		b.WriteString(fmt.Sprintf("\n⚠️ Errors: %s\n", strings.Join(names, ", ")))
	}
	return b.String()
}
