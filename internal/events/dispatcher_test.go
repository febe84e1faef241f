package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	var first, second int
	d.Subscribe(EventSouscriptionCreated, func(context.Context, Event) error {
		first++
		return nil
	})
	d.Subscribe(EventSouscriptionCreated, func(context.Context, Event) error {
		second++
		return errors.New("handler failure must not stop others")
	})
	d.Subscribe(EventSouscriptionDeleted, func(context.Context, Event) error {
		t.Error("wrong event type delivered")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventSouscriptionCreated}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if first != 1 || second != 1 {
		t.Fatalf("handlers called %d/%d times, want 1/1", first, second)
	}
}
