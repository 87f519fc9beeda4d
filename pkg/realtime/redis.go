package realtime

import (
	"context"
	"errors"

	redisclient "github.com/servanahq/servana-backend/pkg/redis"
)

// RedisSource implements Source on top of Redis pub/sub.
type RedisSource struct {
	client *redisclient.Client
}

// NewRedisSource wraps the shared Redis client as a realtime source.
func NewRedisSource(client *redisclient.Client) (*RedisSource, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisSource{client: client}, nil
}

func (s *RedisSource) Publish(ctx context.Context, channel string, payload []byte) error {
	return s.client.Publish(ctx, channel, payload)
}

func (s *RedisSource) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub, err := s.client.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	out := make(chan Message)
	sub := &redisSubscription{pubsub: pubsub, messages: out}

	go func() {
		defer close(out)
		src := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

type redisSubscription struct {
	pubsub   interface{ Close() error }
	messages chan Message
}

func (s *redisSubscription) Messages() <-chan Message {
	return s.messages
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
