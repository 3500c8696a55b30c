// Package publisher streams scan results to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"SignalScanner/internal/model"
	"SignalScanner/internal/report"
)

// EventSignalResult is the event type of every published result.
const EventSignalResult = "SIGNAL_RESULT"

// SignalEvent is the message value published for every scanned ticker.
type SignalEvent struct {
	EventType string             `json:"event_type"`
	ScanID    string             `json:"scan_id"`
	Ticker    string             `json:"ticker"`
	Signal    model.SignalResult `json:"signal"`
	Timestamp time.Time          `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing scan results to Kafka
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, topic: topic}
}

// PublishReport writes one message per result, keyed by ticker so that all
// events for a ticker land on the same partition.
func (p *Producer) PublishReport(ctx context.Context, rep *report.Report) error {
	if len(rep.Results) == 0 {
		return nil
	}
	msgs, err := buildMessages(rep)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write %d messages to kafka: %w", len(msgs), err)
	}
	return nil
}

func buildMessages(rep *report.Report) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(rep.Results))
	for _, res := range rep.Results {
		event := SignalEvent{
			EventType: EventSignalResult,
			ScanID:    rep.ID,
			Ticker:    res.Ticker,
			Signal:    res,
			Timestamp: rep.FinishedAt,
		}
		data, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event for %s: %w", res.Ticker, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(res.Ticker), Value: data})
	}
	return msgs, nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
