package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "listgraph:events"

// Envelope is the wire form of an event on Redis.
type Envelope struct {
	ID      string    `json:"id"`
	Session string    `json:"session,omitempty"`
	Time    time.Time `json:"time"`
	Event   Event     `json:"event"`
}

// RedisPublisher publishes events as JSON envelopes on a Redis channel so
// other processes can follow a session.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	session string
	now     func() time.Time
}

// NewRedisPublisher returns a publisher on channel tagged with session. An
// empty channel selects [DefaultChannel].
func NewRedisPublisher(client redis.UniversalClient, channel, session string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel, session: session, now: time.Now}
}

// Channel returns the Redis channel name.
func (p *RedisPublisher) Channel() string { return p.channel }

// Publish implements [Publisher].
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := p.encode(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Name, err)
	}
	return nil
}

func (p *RedisPublisher) encode(ev Event) ([]byte, error) {
	return json.Marshal(Envelope{
		ID:      uuid.NewString(),
		Session: p.session,
		Time:    p.now().UTC(),
		Event:   ev,
	})
}

// DecodeEnvelope parses a message published by [RedisPublisher].
func DecodeEnvelope(payload string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}

// Follow subscribes to channel and forwards every decodable envelope to h
// until ctx is done. Messages that do not decode are skipped.
func Follow(ctx context.Context, client redis.UniversalClient, channel string, h func(Envelope)) error {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			env, err := DecodeEnvelope(msg.Payload)
			if err != nil {
				continue
			}
			h(env)
		}
	}
}
