// Package format renders numeric magnitudes for reports and messages.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	crore = 1e7
	lakh  = 1e5
)

// Volume renders v in crore ("1.23 Cr"), lakh ("2.50 L") or as a
// thousands-grouped integer ("4,321"). Numeric strings are parsed; any value
// that is not a number is returned in its string form.
func Volume(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return fmt.Sprint(f)
	case f >= crore:
		return fmt.Sprintf("%.2f Cr", f/crore)
	case f >= lakh:
		return fmt.Sprintf("%.2f L", f/lakh)
	default:
		return humanize.Comma(int64(math.RoundToEven(f)))
	}
}

// Price renders v with exactly two decimals, rounding the exact binary value
// half to even (2.675 is stored as 2.67499... and renders "2.67").
func Price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	// -1074 is the smallest float64 exponent, so the conversion is exact.
	return decimal.NewFromFloatWithExponent(v, -1074).StringFixedBank(2)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
