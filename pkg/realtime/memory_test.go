package realtime

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBrokerDeliversToSubscribers(t *testing.T) {
	ctx := context.Background()
	broker := NewMemoryBroker()

	sub, err := broker.Subscribe(ctx, "sv:locations:vendor:v1")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Close()

	if err := broker.Publish(ctx, "sv:locations:vendor:v1", []byte(`{"lat":1}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		if msg.Channel != "sv:locations:vendor:v1" {
			t.Fatalf("unexpected channel %s", msg.Channel)
		}
		if string(msg.Payload) != `{"lat":1}` {
			t.Fatalf("unexpected payload %s", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestMemoryBrokerIsolatesChannels(t *testing.T) {
	ctx := context.Background()
	broker := NewMemoryBroker()

	sub, err := broker.Subscribe(ctx, "sv:locations:vendor:v1")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Close()

	if err := broker.Publish(ctx, "sv:locations:vendor:v2", []byte("other")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		t.Fatalf("unexpected cross-channel delivery: %s", msg.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBrokerCloseStopsDelivery(t *testing.T) {
	ctx := context.Background()
	broker := NewMemoryBroker()

	sub, err := broker.Subscribe(ctx, "chan")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}

	if err := broker.Publish(ctx, "chan", []byte("late")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if _, ok := <-sub.Messages(); ok {
		t.Fatal("expected closed message channel")
	}
}
