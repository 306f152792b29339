package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/tastykitchen/order-service/internal/catalog"
	"github.com/tastykitchen/order-service/internal/domain"
)

// maxDispatchAttempts bounds the re-fetch loop when a dispatch transition
// loses the version race.
const maxDispatchAttempts = 3

// ErrCatalogUnavailable marks a submission that failed because the catalog
// lookup itself could not complete, as opposed to the entry being absent.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Catalog resolves a food reference to a priced entry. Absence is (nil, nil);
// an error means the lookup itself could not complete.
type Catalog interface {
	FoodByRef(ctx context.Context, ref string) (*catalog.Food, error)
}

// Store is the durable order collection the service writes through.
type Store interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindAllByOwner(ctx context.Context, owner string) ([]domain.Order, error)
}

// Publisher emits events to the outbound channel.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service is the order lifecycle engine: it decides acceptance, persists the
// record, emits the acceptance event and applies inbound dispatch transitions.
type Service struct {
	store     Store
	catalog   Catalog
	publisher Publisher
	logger    *slog.Logger

	acceptedCounter   metric.Int64Counter
	rejectedCounter   metric.Int64Counter
	dispatchedCounter metric.Int64Counter
	publishFailures   metric.Int64Counter
}

func NewService(store Store, cat Catalog, publisher Publisher, logger *slog.Logger) (*Service, error) {
	meter := otel.Meter("orders/service")

	accepted, err := meter.Int64Counter("orders.accepted",
		metric.WithDescription("Orders accepted against the catalog"))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("orders.rejected",
		metric.WithDescription("Orders rejected because the catalog entry was absent"))
	if err != nil {
		return nil, err
	}
	dispatched, err := meter.Int64Counter("orders.dispatched",
		metric.WithDescription("Orders moved to DISPATCHED by inbound notifications"))
	if err != nil {
		return nil, err
	}
	publishFailures, err := meter.Int64Counter("orders.publish_failures",
		metric.WithDescription("Acceptance events that could not be published"))
	if err != nil {
		return nil, err
	}

	return &Service{
		store:             store,
		catalog:           cat,
		publisher:         publisher,
		logger:            logger,
		acceptedCounter:   accepted,
		rejectedCounter:   rejected,
		dispatchedCounter: dispatched,
		publishFailures:   publishFailures,
	}, nil
}

// SubmitOrder decides acceptance for a validated submission and persists the
// outcome. Rejection still produces a record. A catalog entry that exists but
// carries empty fields is still an acceptance; only absence rejects. A failed
// lookup is propagated so a catalog outage does not masquerade as rejection.
func (s *Service) SubmitOrder(ctx context.Context, ref string, quantity int, owner string) (*domain.Order, error) {
	food, err := s.catalog.FoodByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup for %s: %w", ErrCatalogUnavailable, ref, err)
	}

	var order *domain.Order
	if food != nil {
		order = buildAcceptedOrder(food, quantity, owner)
	} else {
		order = buildRejectedOrder(ref, quantity, owner)
	}

	created, err := s.store.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if created.Status == domain.OrderStatusAccepted {
		s.acceptedCounter.Add(ctx, 1)
		s.publishOrderAccepted(ctx, created)
	} else {
		s.rejectedCounter.Add(ctx, 1)
	}

	return created, nil
}

// Orders lists the owner's orders. Visibility is scoped by the store query;
// no ordering is guaranteed.
func (s *Service) Orders(ctx context.Context, owner string) ([]domain.Order, error) {
	return s.store.FindAllByOwner(ctx, owner)
}

func buildAcceptedOrder(food *catalog.Food, quantity int, owner string) *domain.Order {
	description := food.Description + " - " + food.Chef
	price := food.Price
	return &domain.Order{
		FoodRef:         food.Ref,
		FoodDescription: &description,
		FoodPrice:       &price,
		Quantity:        quantity,
		Status:          domain.OrderStatusAccepted,
		CreatedBy:       owner,
	}
}

func buildRejectedOrder(ref string, quantity int, owner string) *domain.Order {
	return &domain.Order{
		FoodRef:   ref,
		Quantity:  quantity,
		Status:    domain.OrderStatusRejected,
		CreatedBy: owner,
	}
}

// publishOrderAccepted emits the acceptance event. Publication is
// fire-and-forget relative to the submission: a failure is logged and
// counted, never surfaced to the caller.
func (s *Service) publishOrderAccepted(ctx context.Context, order *domain.Order) {
	event := domain.OrderAcceptedEvent{OrderID: order.ID}
	s.logger.Info("publishing order accepted event", "order_id", order.ID)

	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.publishFailures.Add(ctx, 1)
		s.logger.Error("failed to publish order accepted event", "error", err, "order_id", order.ID)
	}
}

// HandleDispatched consumes a single dispatch notification. Unknown orders
// are dropped, the transition is idempotent, and a lost version race is
// retried against a fresh read a bounded number of times.
func (s *Service) HandleDispatched(ctx context.Context, payload []byte) error {
	var event domain.OrderDispatchedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order dispatched event: %w", err)
	}

	for attempt := 1; attempt <= maxDispatchAttempts; attempt++ {
		order, err := s.store.FindByID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("find order %s: %w", event.OrderID, err)
		}

		if order == nil {
			s.logger.Warn("dispatch notification for unknown order, dropping", "order_id", event.OrderID)
			return nil
		}

		switch order.Status {
		case domain.OrderStatusDispatched:
			return nil
		case domain.OrderStatusRejected:
			s.logger.Warn("dispatch notification for rejected order, dropping", "order_id", event.OrderID)
			return nil
		}

		dispatched := *order
		dispatched.Status = domain.OrderStatusDispatched

		_, err = s.store.Update(ctx, &dispatched)
		if err == nil {
			s.dispatchedCounter.Add(ctx, 1)
			s.logger.Info("order dispatched", "order_id", order.ID)
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("update order %s: %w", event.OrderID, err)
		}

		s.logger.Warn("version conflict applying dispatch transition, retrying",
			"order_id", event.OrderID, "attempt", attempt)
	}

	return fmt.Errorf("dispatch transition for order %s: %w after %d attempts", event.OrderID, ErrVersionConflict, maxDispatchAttempts)
}
