package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher is the part of *redis.Client the board feed needs.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// BoardFeed forwards ticket events to a Redis pub/sub channel for live board clients.
type BoardFeed struct {
	client  RedisPublisher
	channel string
}

// NewBoardFeed builds the feed.
func NewBoardFeed(client RedisPublisher, channel string) *BoardFeed {
	return &BoardFeed{client: client, channel: channel}
}

// Handle publishes event as JSON.
func (f *BoardFeed) Handle(ctx context.Context, event Event) error {
	if f == nil || f.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// TransitionRecorder receives committed status changes.
type TransitionRecorder interface {
	RecordTransition(from, to string)
}

// MetricsHandler counts status changes, using "new" as the origin of created tickets.
func MetricsHandler(rec TransitionRecorder) EventHandler {
	return func(_ context.Context, event Event) error {
		from := string(event.Payload.From)
		if from == "" {
			from = "new"
		}
		rec.RecordTransition(from, string(event.Payload.To))
		return nil
	}
}
