package kafkax

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

// Writer publishes JSON messages to one topic.
type Writer struct {
	w *kgo.Writer
}

// NewWriter creates a writer for a comma separated broker list.
func NewWriter(brokers, topic string) *Writer {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return &Writer{w: &kgo.Writer{
		Addr:                   kgo.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           kgo.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}}
}

// WriteJSON marshals v and writes it under key.
func (w *Writer) WriteJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.w.WriteMessages(ctx, kgo.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
	})
}

func (w *Writer) Close() error { return w.w.Close() }
