package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stayops/hotel-request-service/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var created, rated int
	dispatcher.Subscribe(EventRequestCreated, func(context.Context, Event) error {
		created++
		return nil
	})
	dispatcher.Subscribe(EventRequestRated, func(context.Context, Event) error {
		rated++
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventRequestCreated}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if created != 1 || rated != 0 {
		t.Fatalf("expected only the created handler to fire, got created=%d rated=%d", created, rated)
	}
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var second bool
	dispatcher.Subscribe(EventRequestStateChanged, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventRequestStateChanged, func(context.Context, Event) error {
		second = true
		return nil
	})

	event := Event{
		Type: EventRequestStateChanged,
		Payload: RequestStateChangedPayload{
			FromStatus: domain.RequestStatusPending,
			ToStatus:   domain.RequestStatusInProgress,
		},
	}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish must swallow handler errors: %v", err)
	}
	if !second {
		t.Fatal("second handler must still run")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventRequestDeleted}); err != nil {
		t.Fatalf("publish without subscribers failed: %v", err)
	}
}
