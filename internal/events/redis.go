package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	channelPrefix = "erp:events:"
	channelAll    = channelPrefix + "all"
)

// RedisPublisher publishes each event to a per-type channel and to the
// firehose channel the WebSocket hub subscribes to.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("type", event.Type).Warn("failed to marshal event")
		return
	}

	for _, channel := range []string{channelPrefix + event.Type, channelAll} {
		if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"channel": channel,
				"type":    event.Type,
			}).Warn("failed to publish event")
		}
	}
}

// Subscribe returns the raw firehose subscription used by the hub.
func Subscribe(ctx context.Context, rdb *redis.Client) (*redis.PubSub, error) {
	sub := rdb.Subscribe(ctx, channelAll)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channelAll, err)
	}
	return sub, nil
}
