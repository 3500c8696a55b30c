package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/model"
	"SignalScanner/internal/report"
)

func TestFormatScanSummary(t *testing.T) {
	rep := &report.Report{
		FinishedAt: time.Date(2024, 5, 6, 15, 45, 0, 0, time.UTC),
		Results: []model.SignalResult{
			{Ticker: "RELIANCE", Classification: model.ConfirmedBuy, FastEMA: 2950, SlowEMA: 2900,
				Volume: 2_000_000, VolumeEMA: 1_133_333, HasIndicators: true,
				CrossoverAt: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)},
			{Ticker: "IOC", Classification: model.WeakSell, FastEMA: 160, SlowEMA: 165, HasIndicators: true},
			{Ticker: "NOPE", Classification: model.NoData},
			{Ticker: "BAD", Classification: model.Error, Reason: "timeout"},
		},
	}
	msg := FormatScanSummary(rep)

	assert.Contains(t, msg, "4 tickers scanned")
	assert.Contains(t, msg, "CONFIRMED BUY: 1")
	assert.Contains(t, msg, "NO DATA: 1")
	assert.Contains(t, msg, "RELIANCE <b>CONFIRMED BUY</b> EMA9 2950.00 / EMA20 2900.00, vol 20.00 L vs 11.33 L")
	assert.Contains(t, msg, "crossed 2024-05-05")
	assert.Contains(t, msg, "IOC <b>WEAK SELL</b>")
	assert.Contains(t, msg, "Errors: BAD")
	assert.NotContains(t, msg, "NOPE <b>")
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "99", "", zerolog.Nop())
	n.APIURL = srv.URL
	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 0))
	assert.Equal(t, "99", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "99", "", zerolog.Nop())
	n.APIURL = srv.URL
	err := n.SendWithRetry(context.Background(), "hello", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
