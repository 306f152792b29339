package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tastykitchen/order-service/internal/domain"
)

const (
	minQuantity = 1
	maxQuantity = 5
)

// OrderService is the slice of the lifecycle engine the HTTP boundary needs.
type OrderService interface {
	SubmitOrder(ctx context.Context, ref string, quantity int, owner string) (*domain.Order, error)
	Orders(ctx context.Context, owner string) ([]domain.Order, error)
}

type Handler struct {
	service OrderService
	logger  *slog.Logger
}

func NewHandler(service OrderService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type orderRequest struct {
	Ref      string `json:"ref"`
	Quantity int    `json:"quantity"`
}

// HandleSubmit validates the submission at the boundary (non-blank ref,
// quantity 1..5, owner identity present) and hands the engine a clean triple.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	owner := r.Header.Get("X-User-ID")
	if owner == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Ref) == "" {
		h.writeError(w, http.StatusBadRequest, "the food ref must be defined")
		return
	}
	if req.Quantity < minQuantity {
		h.writeError(w, http.StatusBadRequest, "you must order at least 1 item")
		return
	}
	if req.Quantity > maxQuantity {
		h.writeError(w, http.StatusBadRequest, "you cannot order more than 5 items")
		return
	}

	order, err := h.service.SubmitOrder(r.Context(), req.Ref, req.Quantity, owner)
	if err != nil {
		h.logger.Error("failed to submit order", "error", err, "ref", req.Ref, "owner", owner)
		if errors.Is(err, ErrCatalogUnavailable) {
			h.writeError(w, http.StatusServiceUnavailable, "catalog service unavailable")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order submitted", "order_id", order.ID, "status", order.Status, "owner", owner)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner := r.Header.Get("X-User-ID")
	if owner == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	orders, err := h.service.Orders(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "owner", owner)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "owner", owner, "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
