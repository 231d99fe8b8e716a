// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TripPlanned is published after a trip's plan has been stored.
type TripPlanned struct {
	TripID    uuid.UUID `json:"trip_id"`
	UserID    uuid.UUID `json:"user_id"`
	Miles     float64   `json:"miles"`
	Hours     float64   `json:"hours"`
	Stops     int       `json:"stop_count"`
	LogDays   int       `json:"log_days"`
	PlannedAt time.Time `json:"planned_at"`
}

// Publisher delivers events.
type Publisher interface {
	PublishTripPlanned(ctx context.Context, e TripPlanned) error
	Close() error
}

// Nop discards every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) PublishTripPlanned(context.Context, TripPlanned) error { return nil }
func (Nop) Close() error                                          { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON to a single topic, keyed by trip ID
// so a trip's events stay ordered within a partition.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		timeout: 2 * time.Second,
	}
}

// PublishTripPlanned writes e.
func (p *KafkaPublisher) PublishTripPlanned(ctx context.Context, e TripPlanned) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events.KafkaPublisher.PublishTripPlanned: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:     []byte(e.TripID.String()),
		Value:   b,
		Headers: []kafka.Header{{Key: "type", Value: []byte("trip.planned")}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events.KafkaPublisher.PublishTripPlanned: %w", err)
	}
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
