package realtime

import "context"

// Message is a payload delivered on a named channel.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription delivers messages for one channel until closed.
type Subscription interface {
	// Messages returns the stream of payloads. The channel is closed when
	// the subscription ends.
	Messages() <-chan Message
	Close() error
}

// Source fans location payloads out to interested subscribers keyed by channel.
type Source interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}
