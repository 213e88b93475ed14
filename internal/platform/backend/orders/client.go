// Package orders is the adapter for the orders gRPC backend.
package orders

import (
	"context"
	"time"

	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
)

// ItemRequest is one line of a new order.
type ItemRequest struct {
	ProductID int32
	Quantity  int32
}

// CreateRequest describes a new order.
type CreateRequest struct {
	UserID          int32
	DeliveryAddress string
	Items           []ItemRequest
}

// Filters narrows GetAllOrders. Nil fields are not sent.
type Filters struct {
	OrderID   *int32
	UserID    *int32
	Status    *string
	StartDate *time.Time
	EndDate   *time.Time
}

// StatusUpdate moves an order to a new status.
type StatusUpdate struct {
	NewStatus      string
	TrackingNumber *string
}

// Item is an order line as reported by the backend.
type Item struct {
	ItemID          int32   `json:"item_id"`
	ProductID       int32   `json:"product_id"`
	Quantity        int32   `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// Order is the backend's order payload.
type Order struct {
	Message         string     `json:"message"`
	ID              int32      `json:"id"`
	UserID          int32      `json:"user_id"`
	TotalAmount     float64    `json:"total_amount"`
	CurrentStatus   string     `json:"current_status"`
	DeliveryAddress string     `json:"delivery_address"`
	TrackingNumber  string     `json:"tracking_number"`
	OrderDate       *time.Time `json:"order_date"`
	UpdatedAt       *time.Time `json:"updated_at"`
	Items           []Item     `json:"items"`
}

// OrderList is the reply of GetAllOrders.
type OrderList struct {
	Count  int32   `json:"count"`
	Orders []Order `json:"orders"`
}

// MessageReply carries only a status message.
type MessageReply struct {
	Message string `json:"message"`
}

// Client holds a lease on the orders backend for the duration of one request.
type Client struct {
	lease *backend.Lease
}

// Open acquires a lease from pool. Callers must Close the client.
func Open(ctx context.Context, pool *backend.Pool) (*Client, error) {
	lease, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{lease: lease}, nil
}

// Close releases the lease. It is safe to call more than once.
func (c *Client) Close() {
	c.lease.Release()
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	items := make([]*backend.Fields, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, backend.NewFields().Set("product_id", it.ProductID).Set("quantity", it.Quantity))
	}
	fields := backend.NewFields().
		Set("user_id", req.UserID).
		Set("delivery_address", req.DeliveryAddress).
		Set("items_to_create", items)

	var reply Order
	if err := c.lease.Call(ctx, Schema.Method(MethodCreateOrder), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetAllOrders lists orders matching the supplied filters.
func (c *Client) GetAllOrders(ctx context.Context, filters Filters) (*OrderList, error) {
	fields := backend.NewFields()
	backend.SetOptional(fields, "order_id", filters.OrderID)
	backend.SetOptional(fields, "user_id", filters.UserID)
	backend.SetOptional(fields, "current_status", filters.Status)
	backend.SetOptional(fields, "start_date", filters.StartDate)
	backend.SetOptional(fields, "end_date", filters.EndDate)

	var reply OrderList
	if err := c.lease.Call(ctx, Schema.Method(MethodGetAllOrders), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetOrderByID fetches one order with its items.
func (c *Client) GetOrderByID(ctx context.Context, id int32) (*Order, error) {
	var reply Order
	if err := c.lease.Call(ctx, Schema.Method(MethodGetOrderByID), backend.NewFields().Set("id", id), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// UpdateOrderStatus changes an order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int32, update StatusUpdate) (*Order, error) {
	fields := backend.NewFields().Set("id", id).Set("new_status", update.NewStatus)
	backend.SetOptional(fields, "tracking_number", update.TrackingNumber)

	var reply Order
	if err := c.lease.Call(ctx, Schema.Method(MethodUpdateOrderStatus), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// DeleteOrder cancels an order.
func (c *Client) DeleteOrder(ctx context.Context, id int32, reason *string) (*MessageReply, error) {
	fields := backend.NewFields().Set("id", id)
	backend.SetOptional(fields, "cancellation_reason", reason)

	var reply MessageReply
	if err := c.lease.Call(ctx, Schema.Method(MethodDeleteOrder), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
