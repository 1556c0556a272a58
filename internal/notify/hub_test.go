package notify

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()

	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	update := OrderUpdate{OrderID: "o1", UserID: "u1", Status: "confirmed", At: time.Now()}
	hub.Publish(update)

	for _, ch := range []<-chan OrderUpdate{a, b} {
		select {
		case got := <-ch:
			if got.OrderID != "o1" || got.Status != "confirmed" {
				t.Fatalf("unexpected update: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for update")
		}
	}
}

func TestCancelClosesChannel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe()
	cancel()
	cancel() // safe to call twice

	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed after cancel")
	}

	// A publish after cancel must not panic or deliver anywhere.
	hub.Publish(OrderUpdate{OrderID: "o1"})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.Publish(OrderUpdate{OrderID: "o1", Status: "preparing"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestDeliveryOrderPerSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe()
	defer cancel()

	statuses := []string{"confirmed", "preparing", "ready"}
	for _, s := range statuses {
		hub.Publish(OrderUpdate{OrderID: "o1", Status: s})
	}

	for _, want := range statuses {
		select {
		case got := <-ch:
			if got.Status != want {
				t.Fatalf("expected %s, got %s", want, got.Status)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for update")
		}
	}
}
