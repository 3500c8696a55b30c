package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"

	"SignalScanner/internal/format"
	"SignalScanner/internal/model"
)

// Header is the column layout shared by the CSV export and the text table.
var Header = []string{"Ticker", "Signal", "EMA9", "EMA20", "Vol Today", "Vol EMA(14)", "Reason"}

// Row renders one result as table cells. Indicator cells are blank for
// results that carry no indicator values.
func Row(res model.SignalResult) []string {
	row := []string{res.Ticker, res.Classification.Label(), "", "", "", "", res.Reason}
	if res.HasIndicators {
		row[2] = format.Price(res.FastEMA)
		row[3] = format.Price(res.SlowEMA)
		row[4] = format.Volume(res.Volume)
		row[5] = format.Volume(res.VolumeEMA)
	}
	return row
}

// WriteCSV writes the report as comma-delimited UTF-8 with a header row,
// one row per result in report order.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, res := range r.Results {
		if err := cw.Write(Row(res)); err != nil {
			return fmt.Errorf("write csv row %s: %w", res.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes the report as an aligned plain-text table.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	writeLine(Header)
	for _, res := range r.Results {
		writeLine(Row(res))
	}
	return tw.Flush()
}
