package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tastykitchen/order-service/internal/domain"
)

type fakePublisher struct {
	keys   []string
	events []any
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return nil
}

func TestFulfillmentHandler_Handle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("publishes dispatched event for accepted order", func(t *testing.T) {
		pub := &fakePublisher{}
		handler := NewFulfillmentHandler(pub, logger)

		if err := handler.Handle(context.Background(), []byte(`{"order_id":"order-1"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(pub.events) != 1 {
			t.Fatalf("expected one event, got %d", len(pub.events))
		}
		event, ok := pub.events[0].(domain.OrderDispatchedEvent)
		if !ok {
			t.Fatalf("expected OrderDispatchedEvent, got %T", pub.events[0])
		}
		if event.OrderID != "order-1" {
			t.Errorf("expected order id 'order-1', got %s", event.OrderID)
		}
		if pub.keys[0] != "order-1" {
			t.Errorf("expected message key 'order-1', got %s", pub.keys[0])
		}
	})

	t.Run("fails on malformed payload", func(t *testing.T) {
		handler := NewFulfillmentHandler(&fakePublisher{}, logger)

		if err := handler.Handle(context.Background(), []byte(`{not json`)); err == nil {
			t.Fatal("expected error for malformed payload")
		}
	})

	t.Run("propagates publish failure", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker down")}
		handler := NewFulfillmentHandler(pub, logger)

		if err := handler.Handle(context.Background(), []byte(`{"order_id":"order-1"}`)); err == nil {
			t.Fatal("expected error when publish fails")
		}
	})
}
