package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTypeDKPChange, func(ctx context.Context, event Event) {
		received <- event
	})

	published := DKPChangeEvent{
		GuildID:  1,
		UserID:   7,
		Change:   50,
		NewTotal: 50,
		Reason:   "Raid attendance",
	}
	bus.Publish(context.Background(), published)

	select {
	case event := <-received:
		change, ok := event.(DKPChangeEvent)
		assert.True(t, ok)
		assert.Equal(t, published, change)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestBus_PublishFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventTypeCodeRedeemed, func(ctx context.Context, event Event) {
			wg.Done()
		})
	}

	bus.Publish(context.Background(), CodeRedeemedEvent{GuildID: 1, UserID: 7, Code: "ABCD1234"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all handlers were invoked")
	}
}

func TestBus_PublishIgnoresOtherEventTypes(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTypeEventCreated, func(ctx context.Context, event Event) {
		received <- event
	})

	bus.Publish(context.Background(), DKPChangeEvent{GuildID: 1, UserID: 7, Change: 10})

	select {
	case <-received:
		t.Fatal("handler received an event of the wrong type")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	received := make(chan struct{}, 1)

	bus.Subscribe(EventTypeDKPChange, func(ctx context.Context, event Event) {
		panic("handler failure")
	})
	bus.Subscribe(EventTypeDKPChange, func(ctx context.Context, event Event) {
		received <- struct{}{}
	})

	bus.Publish(context.Background(), DKPChangeEvent{GuildID: 1, UserID: 7, Change: 10})

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("second handler was not invoked")
	}
}
