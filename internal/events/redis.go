// Package events publishes tracker domain events on Redis pub/sub or NATS.
// The channel (Redis) or subject (NATS) is derived from the event type.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// RedisPublisher publishes each event on the Redis channel named after its type.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher on rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish implements tracker.Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, ev tracker.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, ev.Type, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Type, err)
	}
	return nil
}
