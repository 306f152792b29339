package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/tastykitchen/order-service/internal/domain"
)

// Publisher emits the dispatched notification once fulfillment has started.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// FulfillmentHandler consumes accepted orders, simulates the pack and label
// steps and notifies the order service that fulfillment has begun.
type FulfillmentHandler struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewFulfillmentHandler(publisher Publisher, logger *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		publisher: publisher,
		logger:    logger,
	}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderAcceptedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order accepted event: %w", err)
	}

	h.logger.Info("packing order", "order_id", event.OrderID)
	h.work()
	h.logger.Info("labeling order", "order_id", event.OrderID)
	h.work()

	dispatched := domain.OrderDispatchedEvent{OrderID: event.OrderID}
	if err := h.publisher.Publish(ctx, event.OrderID, dispatched); err != nil {
		return fmt.Errorf("publish order dispatched event: %w", err)
	}

	h.logger.Info("order dispatched", "order_id", event.OrderID)
	return nil
}

func (h *FulfillmentHandler) work() {
	time.Sleep(time.Duration(50+rand.Intn(151)) * time.Millisecond)
}
