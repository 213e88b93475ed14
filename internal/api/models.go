package api

import (
	"time"

	"github.com/phrazzld/censudex-gateway/internal/platform/backend/clients"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/orders"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/products"
)

// Common request/response structures

// MessageResponse carries only a status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateClientRequest defines the payload for client registration.
type CreateClientRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Username  string `json:"username"  validate:"required"`
	Password  string `json:"password"  validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Address   string `json:"address"   validate:"required"`
	Phone     string `json:"phone"     validate:"required"`
}

// UpdateClientRequest is a partial client update. Absent and null fields
// are left untouched.
type UpdateClientRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Username  *string `json:"username"`
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
}

// UpdatePasswordRequest defines the payload for a password change.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=1"`
}

// ClientResponse is a client as exposed by the gateway. CreatedAt and
// UpdatedAt are only present on the routes that report them.
type ClientResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	BirthDate string `json:"birthDate"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ClientEnvelope wraps a single client, with an optional message.
type ClientEnvelope struct {
	Message string         `json:"message,omitempty"`
	Client  ClientResponse `json:"client"`
}

// ClientListResponse is the reply of GET /clients.
type ClientListResponse struct {
	Count   int32            `json:"count"`
	Clients []ClientResponse `json:"clients"`
}

// timestamps selects which audit timestamps a client view carries.
type timestamps struct {
	created bool
	updated bool
}

func clientToResponse(rec clients.Record, ts timestamps) ClientResponse {
	resp := ClientResponse{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Username:  rec.Username,
		Role:      rec.Role,
		IsActive:  rec.IsActive,
		BirthDate: rec.BirthDate,
		Address:   rec.Address,
		Phone:     rec.Phone,
	}
	if ts.created {
		resp.CreatedAt = rec.CreatedAt
	}
	if ts.updated {
		resp.UpdatedAt = rec.UpdatedAt
	}
	return resp
}

// CreateProductRequest defines the payload for a new product.
type CreateProductRequest struct {
	Name     string  `json:"name"     validate:"required,min=1"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price"    validate:"required,gt=0"`
	ImageURL string  `json:"imageUrl"`
}

// UpdateProductRequest is a partial product update.
type UpdateProductRequest struct {
	Name     *string  `json:"name"     validate:"omitempty,min=1"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"    validate:"omitempty,gt=0"`
	ImageURL *string  `json:"imageUrl"`
}

// ProductResponse is a product as exposed by the gateway.
type ProductResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"imageUrl"`
	ImagePublicID string  `json:"imagePublicId"`
	IsActive      bool    `json:"isActive"`
	DateCreated   string  `json:"dateCreated"`
}

// ProductListResponse is the reply of GET /products.
type ProductListResponse struct {
	Success  bool              `json:"success"`
	Count    int32             `json:"count"`
	Products []ProductResponse `json:"products"`
}

// ProductEnvelope wraps a single product.
type ProductEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Product *ProductResponse `json:"product"`
}

// ProductDeleteResponse is the reply of DELETE /products/{id}.
type ProductDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func productToResponse(p *products.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		ImagePublicID: p.ImagePublicID,
		IsActive:      p.IsActive,
		DateCreated:   p.DateCreated,
	}
}

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	ProductID int32 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity"   validate:"required,gt=0"`
}

// CreateOrderRequest defines the payload for a new order.
type CreateOrderRequest struct {
	UserID          int32              `json:"user_id"          validate:"required,gt=0"`
	DeliveryAddress string             `json:"delivery_address" validate:"required"`
	Items           []OrderItemRequest `json:"items_to_create"  validate:"required,min=1,dive"`
}

// UpdateStatusRequest defines the payload for an order status change.
type UpdateStatusRequest struct {
	NewStatus      string  `json:"new_status"      validate:"required"`
	TrackingNumber *string `json:"tracking_number"`
}

// DeleteOrderRequest is the optional body of an order cancellation.
type DeleteOrderRequest struct {
	CancellationReason *string `json:"cancellation_reason"`
}

// CreatedOrder is the order summary returned after creation.
type CreatedOrder struct {
	ID              int32      `json:"id"`
	UserID          int32      `json:"user_id"`
	TotalAmount     float64    `json:"total_amount"`
	CurrentStatus   string     `json:"current_status"`
	DeliveryAddress string     `json:"delivery_address"`
	OrderDate       *time.Time `json:"order_date"`
	ItemsCount      int        `json:"items_count"`
}

// CreateOrderResponse is the reply of POST /orders.
type CreateOrderResponse struct {
	Message string       `json:"message"`
	Order   CreatedOrder `json:"order"`
}

// OrderSummary is one entry of GET /orders.
type OrderSummary struct {
	ID             int32      `json:"id"`
	UserID         int32      `json:"user_id"`
	TotalAmount    float64    `json:"total_amount"`
	CurrentStatus  string     `json:"current_status"`
	OrderDate      *time.Time `json:"order_date"`
	TrackingNumber string     `json:"tracking_number"`
}

// OrderListResponse is the reply of GET /orders.
type OrderListResponse struct {
	Count  int32          `json:"count"`
	Orders []OrderSummary `json:"orders"`
}

// OrderItemResponse is an order line.
type OrderItemResponse struct {
	ItemID          int32   `json:"item_id"`
	ProductID       int32   `json:"product_id"`
	Quantity        int32   `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// OrderDetail is the full order returned by GET /orders/{id}.
type OrderDetail struct {
	ID              int32               `json:"id"`
	UserID          int32               `json:"user_id"`
	TotalAmount     float64             `json:"total_amount"`
	CurrentStatus   string              `json:"current_status"`
	OrderDate       *time.Time          `json:"order_date"`
	DeliveryAddress string              `json:"delivery_address"`
	TrackingNumber  string              `json:"tracking_number"`
	Items           []OrderItemResponse `json:"items"`
}

// OrderDetailResponse wraps OrderDetail.
type OrderDetailResponse struct {
	Order OrderDetail `json:"order"`
}

// OrderStatus is the order view returned after a status change.
type OrderStatus struct {
	ID            int32      `json:"id"`
	CurrentStatus string     `json:"current_status"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// UpdateStatusResponse is the reply of PATCH /orders/{id}/status.
type UpdateStatusResponse struct {
	Message string      `json:"message"`
	Order   OrderStatus `json:"order"`
}

func orderToDetail(o *orders.Order) OrderDetail {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse(it))
	}
	return OrderDetail{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		CurrentStatus:   o.CurrentStatus,
		OrderDate:       o.OrderDate,
		DeliveryAddress: o.DeliveryAddress,
		TrackingNumber:  o.TrackingNumber,
		Items:           items,
	}
}

// LoginRequest defines the payload for the login passthrough.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}
