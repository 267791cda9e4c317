package session

import (
	"testing"
	"time"

	"gapscope/internal/model"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	bus := NewBus()
	first, releaseFirst := bus.Subscribe()
	second, releaseSecond := bus.Subscribe()
	defer releaseFirst()
	defer releaseSecond()

	change := TypeChange{Feature: "age", DataType: model.TypeCategorical}
	bus.Publish(change)

	for _, ch := range []<-chan TypeChange{first, second} {
		select {
		case got := <-ch:
			if got != change {
				t.Fatalf("unexpected change %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected a delivery")
		}
	}
}

func TestReleaseStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, release := bus.Subscribe()
	release()

	// Publishing after release must not panic on the closed channel.
	bus.Publish(TypeChange{Feature: "age", DataType: model.TypeNumerical})

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	bus := NewBus()
	_, release := bus.Subscribe()
	release()
	release()
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := NewBus()
	_, release := bus.Subscribe()
	defer release()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(TypeChange{Feature: "age", DataType: model.TypeNumerical})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publisher blocked on a saturated subscriber")
	}
}
