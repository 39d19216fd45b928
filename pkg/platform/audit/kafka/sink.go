// Package kafka fans audit events out to a Kafka topic so downstream
// consumers (SIEM, warehouse) can subscribe without touching the primary
// store. The local store remains the system of record; publishing here is
// best-effort and failures are reported by the publisher, never propagated.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
)

// Sink publishes audit events to a Kafka topic keyed by resource ID so all
// events for one resource land in one partition, preserving their order.
type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewSink connects to the given seed brokers. The caller owns the lifecycle
// and must Close the sink on shutdown.
func NewSink(seeds []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic, logger: logger}, nil
}

// record is the wire shape published to Kafka.
type record struct {
	ID            string         `json:"id"`
	Action        string         `json:"action"`
	Category      string         `json:"category"`
	ActorID       string         `json:"actor_id"`
	ActorKind     string         `json:"actor_kind"`
	ActorName     string         `json:"actor_name,omitempty"`
	ResourceType  string         `json:"resource_type"`
	ResourceID    string         `json:"resource_id,omitempty"`
	ResourceName  string         `json:"resource_name,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	ClientIP      string         `json:"client_ip,omitempty"`
	CorrelationID string         `json:"correlation_id"`
	Timestamp     string         `json:"timestamp"`
}

// Publish produces the event asynchronously. Delivery failures are logged;
// the audit publisher treats sink errors as non-fatal either way.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(record{
		ID:            event.ID.String(),
		Action:        string(event.Action),
		Category:      string(event.Action.Category()),
		ActorID:       event.Actor.ID,
		ActorKind:     string(event.Actor.Kind),
		ActorName:     event.Actor.DisplayName,
		ResourceType:  string(event.Resource.Type),
		ResourceID:    event.Resource.ID,
		ResourceName:  event.Resource.DisplayName,
		Payload:       event.Payload,
		UserAgent:     event.Client.UserAgent,
		ClientIP:      event.Client.IP,
		CorrelationID: event.CorrelationID.String(),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	s.client.Produce(ctx, &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Resource.ID),
		Value: value,
	}, func(r *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("kafka audit produce failed",
				"action", string(event.Action),
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes outstanding records and releases the client.
func (s *Sink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
