package redisx

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/anonto42/snapgram/backend/internal/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel cache invalidations travel on.
const DefaultChannel = "snapgram:cache:invalidate"

type invalidation struct {
	Origin string     `json:"origin"`
	Keys   [][]string `json:"keys"`
}

// Bus broadcasts query cache invalidations between service instances over
// Redis pub/sub. Messages published by the same Bus are ignored on receipt.
type Bus struct {
	rdb     redis.UniversalClient
	channel string
	origin  string
}

// NewBus creates a bus on channel; an empty channel means DefaultChannel.
func NewBus(rdb redis.UniversalClient, channel string) *Bus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{rdb: rdb, channel: channel, origin: uuid.NewString()}
}

func (b *Bus) Publish(ctx context.Context, keys []cache.Key) error {
	msg := invalidation{Origin: b.origin, Keys: make([][]string, len(keys))}
	for i, k := range keys {
		msg.Keys[i] = k
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *Bus) Subscribe(ctx context.Context, fn func(keys []cache.Key)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			keys, ok := b.decode(m.Payload)
			if ok {
				fn(keys)
			}
		}
	}
}

// decode returns the keys of a message from another instance.
func (b *Bus) decode(payload string) ([]cache.Key, bool) {
	var msg invalidation
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		slog.Warn("dropping malformed invalidation", "error", err)
		return nil, false
	}
	if msg.Origin == b.origin || len(msg.Keys) == 0 {
		return nil, false
	}
	keys := make([]cache.Key, len(msg.Keys))
	for i, k := range msg.Keys {
		keys[i] = k
	}
	return keys, true
}
