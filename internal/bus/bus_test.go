package bus

import (
	"testing"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	b := New()
	first := b.Subscribe(4)
	second := b.Subscribe(4)

	b.Publish(AuthStatusChanged{Authorized: true, Domain: store.DomainConsumers})

	for i, ch := range []<-chan Notification{first, second} {
		select {
		case n := <-ch:
			got, ok := n.(AuthStatusChanged)
			if !ok {
				t.Fatalf("Subscriber %d: expected AuthStatusChanged, got %T", i, n)
			}
			if !got.Authorized || got.Domain != store.DomainConsumers {
				t.Errorf("Subscriber %d: unexpected payload %+v", i, got)
			}
		default:
			t.Errorf("Subscriber %d received nothing", i)
		}
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)

	// The second publish overflows the buffer and must be dropped, not
	// block the publisher.
	b.Publish(RefreshStarted{})
	b.Publish(RefreshStopped{})

	select {
	case n := <-ch:
		if _, ok := n.(RefreshStarted); !ok {
			t.Errorf("Expected the first notification to survive, got %T", n)
		}
	default:
		t.Fatal("Expected one buffered notification")
	}

	select {
	case n := <-ch:
		t.Errorf("Expected overflow drop, got %T", n)
	default:
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()

	// Must not panic or block.
	b.Publish(EventsUpdated{})
	b.Publish(SyncError{Message: "boom"})
}

func TestSubscribeDefaultsBuffer(t *testing.T) {
	b := New()
	ch := b.Subscribe(0)

	b.Publish(RefreshStarted{})

	select {
	case <-ch:
	default:
		t.Error("Expected a default buffer to hold the notification")
	}
}
