package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalScanner/internal/model"
	"SignalScanner/internal/report"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testReport() *report.Report {
	return &report.Report{
		ID:         "scan-7",
		FinishedAt: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
		Results: []model.SignalResult{
			{Ticker: "TCS", Symbol: "TCS.NS", Classification: model.ConfirmedBuy, HasIndicators: true},
			{Ticker: "XYZ", Classification: model.NoData, Reason: "Not found"},
		},
	}
}

func TestPublishReport(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "signals"}

	require.NoError(t, p.PublishReport(context.Background(), testReport()))
	require.Len(t, w.msgs, 2)

	assert.Equal(t, "TCS", string(w.msgs[0].Key))
	var ev SignalEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, EventSignalResult, ev.EventType)
	assert.Equal(t, "scan-7", ev.ScanID)
	assert.Equal(t, model.ConfirmedBuy, ev.Signal.Classification)
	assert.Equal(t, "TCS.NS", ev.Signal.Symbol)

	assert.Equal(t, "XYZ", string(w.msgs[1].Key))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishReport_EmptyReportWritesNothing(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	p := &Producer{writer: w}
	assert.NoError(t, p.PublishReport(context.Background(), &report.Report{}))
}

func TestPublishReport_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &Producer{writer: w}
	err := p.PublishReport(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
