package events

import (
	"context"
	"time"
)

// MutationEvent announces a successful mutation and the query keys it made
// stale. Keys are the raw key parts.
type MutationEvent struct {
	Name string     `json:"name"`
	Keys [][]string `json:"keys"`
	At   time.Time  `json:"at"`
}

// Publisher delivers mutation events to other services.
type Publisher interface {
	PublishMutation(ctx context.Context, ev MutationEvent) error
}

// JSONWriter is the Kafka side of a Publisher.
type JSONWriter interface {
	WriteJSON(ctx context.Context, key string, v any) error
}

type kafkaPublisher struct {
	w JSONWriter
}

// NewKafkaPublisher publishes events keyed by mutation name, so events of
// one mutation keep their order within a partition.
func NewKafkaPublisher(w JSONWriter) Publisher {
	return &kafkaPublisher{w: w}
}

func (p *kafkaPublisher) PublishMutation(ctx context.Context, ev MutationEvent) error {
	return p.w.WriteJSON(ctx, ev.Name, ev)
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishMutation(context.Context, MutationEvent) error { return nil }
