package realtime

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Source used by tests and local development.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string][]*memorySubscription
}

// NewMemoryBroker constructs an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]*memorySubscription)}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	targets := make([]*memorySubscription, len(b.subs[channel]))
	copy(targets, b.subs[channel])
	b.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(Message{Channel: channel, Payload: payload})
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (Subscription, error) {
	sub := &memorySubscription{
		broker:   b,
		channel:  channel,
		messages: make(chan Message, 16),
	}
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *MemoryBroker) remove(target *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[target.channel]
	for i, sub := range subs {
		if sub == target {
			b.subs[target.channel] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type memorySubscription struct {
	broker   *MemoryBroker
	channel  string
	messages chan Message

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) deliver(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.messages <- msg:
	default:
		// Drop when the subscriber is not keeping up. Location payloads
		// are last-write-wins so skipping an intermediate sample is safe.
	}
}

func (s *memorySubscription) Messages() <-chan Message {
	return s.messages
}

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.messages)
	s.mu.Unlock()

	s.broker.remove(s)
	return nil
}
