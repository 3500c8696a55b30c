package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartOK = `{"chart":{"result":[{"meta":{"symbol":"TCS.NS"},
"timestamp":[1704167100,1704253500,1704339900],
"indicators":{"quote":[{
"open":[3700.0,null,3750.5],
"high":[3720.0,null,3790.0],
"low":[3680.0,null,3740.0],
"close":[3710.0,null,3780.25],
"volume":[1500000,null,2100000]}]}}],"error":null}}`

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newYahooTestServer(t *testing.T, status int, body string, gotPath *string) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotPath != nil {
			*gotPath = r.URL.RequestURI()
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL
	return f
}

func TestYahooFetcher_ParsesChartAndSkipsNullRows(t *testing.T) {
	var path string
	f := newYahooTestServer(t, http.StatusOK, chartOK, &path)

	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", "6mo")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "/v8/finance/chart/TCS.NS?interval=1d&range=6mo", path)
	assert.Equal(t, 3710.0, bars[0].Close)
	assert.Equal(t, 3780.25, bars[1].Close)
	assert.Equal(t, 2_100_000.0, bars[1].Volume)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahooFetcher_NotFoundIsNoData(t *testing.T) {
	f := newYahooTestServer(t, http.StatusNotFound, chartNotFound, nil)
	_, err := f.FetchDailyBars(context.Background(), "NOPE.NS", "6mo")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooFetcher_EmptyResultIsNoData(t *testing.T) {
	f := newYahooTestServer(t, http.StatusOK, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`, nil)
	_, err := f.FetchDailyBars(context.Background(), "EMPTY.NS", "6mo")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooFetcher_ServerError(t *testing.T) {
	f := newYahooTestServer(t, http.StatusBadGateway, "upstream down", nil)
	_, err := f.FetchDailyBars(context.Background(), "TCS.NS", "6mo")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "status 502")
}

func TestRestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("symbol") == "MISSING.NS" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"timestamp":1704253500,"close":11,"volume":5},{"timestamp":1704167100,"close":10,"volume":4}]`))
	}))
	defer srv.Close()

	f := NewRestFetcher(srv.URL, "secret", "", time.Second)
	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", "6mo")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 10.0, bars[0].Close)

	_, err = f.FetchDailyBars(context.Background(), "MISSING.NS", "6mo")
	assert.ErrorIs(t, err, ErrNoData)
}
