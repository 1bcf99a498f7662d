package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishInvokesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("case.updated", HandlerFunc(func(ctx context.Context, event Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}))
	}

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "case.updated"})
	bus.Wait()

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 handler invocations, got %d", got)
	}
}

func TestPublishIsolatesFailingHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var succeeded int32
	bus.Subscribe("case.updated", HandlerFunc(func(ctx context.Context, event Event) error {
		return errors.New("sink unavailable")
	}))
	bus.Subscribe("case.updated", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("handler bug")
	}))
	bus.Subscribe("case.updated", HandlerFunc(func(ctx context.Context, event Event) error {
		atomic.AddInt32(&succeeded, 1)
		return nil
	}))

	// Publish must not panic or block on broken handlers.
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "case.updated"})
	bus.Wait()

	if atomic.LoadInt32(&succeeded) != 1 {
		t.Error("healthy handler was not invoked despite sibling failures")
	}
}

func TestPublishSyncCompletesBeforeReturning(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var done int32
	bus.Subscribe("case.ended", HandlerFunc(func(ctx context.Context, event Event) error {
		time.Sleep(10 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "case.ended"}); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}
	if atomic.LoadInt32(&done) != 1 {
		t.Error("PublishSync returned before handler completed")
	}
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "nobody.listens"})
	bus.Wait()
}
