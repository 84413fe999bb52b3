package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ChannelPrefix namespaces per-event check-in channels.
	ChannelPrefix  = "checkin:"
	publishTimeout = 2 * time.Second
)

// RedisPublisher republishes check-in events on a Redis channel per event so
// live dashboards on any instance can follow the door.
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPublisher creates the publisher.
func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, logger: logger}
}

// Channel returns the Redis channel for an event.
func Channel(eventID string) string {
	return ChannelPrefix + eventID
}

// Attach subscribes the publisher to the event types a dashboard follows.
func (p *RedisPublisher) Attach(dispatcher Dispatcher) {
	if p == nil || p.client == nil || dispatcher == nil {
		return
	}
	SubscribeAll(dispatcher, p.Publish, EventCheckinAdmitted, EventCheckinRejected, EventTokenIssued)
}

// Publish sends event to its channel. Events without an event id are dropped.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.EventID == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.client.Publish(ctx, Channel(event.EventID), body).Err(); err != nil {
		p.logger.Warn("publish checkin event", zap.String("event_id", event.EventID), zap.String("type", string(event.Type)), zap.Error(err))
		return err
	}
	return nil
}
