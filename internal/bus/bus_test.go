package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("store.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindMessagesChanged, Payload: "INSERT"})

	select {
	case evt := <-ch:
		if evt.Kind != KindMessagesChanged {
			t.Errorf("got kind %q, want %q", evt.Kind, KindMessagesChanged)
		}
		if evt.ID == "" {
			t.Error("event ID not assigned")
		}
		if evt.Timestamp.IsZero() {
			t.Error("event timestamp not assigned")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindMessagesChanged})
	b.Publish(Event{Kind: KindPhaseChanged})

	select {
	case evt := <-ch:
		if evt.Kind != KindPhaseChanged {
			t.Errorf("got kind %q, want %q", evt.Kind, KindPhaseChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The store event must not have been delivered to a session subscriber.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("store.", 10)
	unsub()

	b.Publish(Event{Kind: KindMessagesChanged})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := New()
	_, unsub := b.Subscribe("store.", 1)
	unsub()
	unsub()
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("store.", 1)
	defer unsub()

	b.Publish(Event{Kind: KindMessagesChanged, Payload: "first"})
	// Buffer is full; this one is dropped rather than blocking the publisher.
	b.Publish(Event{Kind: KindMessagesChanged, Payload: "second"})

	evt := <-ch
	if evt.Payload != "first" {
		t.Errorf("got payload %v, want first", evt.Payload)
	}
}
