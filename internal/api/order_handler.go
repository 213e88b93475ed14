package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/orders"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
)

// OrderHandler handles order requests.
type OrderHandler struct {
	open   OrdersOpener
	logger *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(open OrdersOpener, logger *slog.Logger) *OrderHandler {
	if open == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("orders opener cannot be nil for OrderHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OrderHandler")
	}

	return &OrderHandler{
		open:   open,
		logger: logger.With(slog.String("component", "order_handler")),
	}
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items := make([]orders.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	c, err := h.open(r.Context())
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	order, err := c.CreateOrder(r.Context(), orders.CreateRequest{
		UserID:          req.UserID,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
	})
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("order created",
		slog.Int("order_id", int(order.ID)),
		slog.Int("items", len(order.Items)))
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateOrderResponse{
		Message: order.Message,
		Order: CreatedOrder{
			ID:              order.ID,
			UserID:          order.UserID,
			TotalAmount:     order.TotalAmount,
			CurrentStatus:   order.CurrentStatus,
			DeliveryAddress: order.DeliveryAddress,
			OrderDate:       order.OrderDate,
			ItemsCount:      len(order.Items),
		},
	})
}

// ListOrders handles GET /orders. Malformed filters are rejected before the
// backend is contacted.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filters := orders.Filters{
		OrderID:   q.Int32("order_id"),
		UserID:    q.Int32("user_id"),
		Status:    q.String("status"),
		StartDate: q.Time("start_date"),
		EndDate:   q.Time("end_date"),
	}
	if err := q.Err(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	list, err := c.GetAllOrders(r.Context(), filters)
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	out := OrderListResponse{Count: list.Count, Orders: make([]OrderSummary, 0, len(list.Orders))}
	for _, o := range list.Orders {
		out.Orders = append(out.Orders, OrderSummary{
			ID:             o.ID,
			UserID:         o.UserID,
			TotalAmount:    o.TotalAmount,
			CurrentStatus:  o.CurrentStatus,
			OrderDate:      o.OrderDate,
			TrackingNumber: o.TrackingNumber,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetOrder handles GET /orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt32(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	defer c.Close()

	order, err := c.GetOrderByID(r.Context(), id)
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsNotFound)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OrderDetailResponse{Order: orderToDetail(order)})
}

// UpdateOrderStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt32(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateStatusRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	order, err := c.UpdateOrderStatus(r.Context(), id, orders.StatusUpdate{
		NewStatus:      req.NewStatus,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		orderResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpdateStatusResponse{
		Message: order.Message,
		Order: OrderStatus{
			ID:            order.ID,
			CurrentStatus: order.CurrentStatus,
			UpdatedAt:     order.UpdatedAt,
		},
	})
}

// DeleteOrder handles DELETE /orders/{id}. The body is optional and may
// carry a cancellation reason.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := getPathInt32(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req DeleteOrderRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		orderCancelResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	defer c.Close()

	reply, err := c.DeleteOrder(r.Context(), id, req.CancellationReason)
	if err != nil {
		orderCancelResource.fail(w, r, err, rejectionIsNotFound)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: reply.Message})
}
