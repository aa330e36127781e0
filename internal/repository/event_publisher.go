package repository

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// EventPublisher publishes encoded events on a Pub/Sub channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisEventPublisher struct {
	rdb *redis.Client
}

// NewEventPublisher creates a Redis Pub/Sub EventPublisher.
func NewEventPublisher(rdb *redis.Client) EventPublisher {
	return &redisEventPublisher{rdb: rdb}
}

func (p *redisEventPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	ctx, span := tracer.Start(ctx, "EventPublisher.Publish")
	defer span.End()

	return p.rdb.Publish(ctx, channel, payload).Err()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }
