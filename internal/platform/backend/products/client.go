// Package products is the adapter for the products gRPC backend.
//
// Product replies carry a success flag. The adapter returns it as received;
// deciding what success=false means for a route is the handler's job.
package products

import (
	"context"

	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
)

// CreateRequest describes a new product.
type CreateRequest struct {
	Name     string
	Category string
	Price    float64
	ImageURL string
}

// UpdateRequest is a partial update. Nil fields are not sent.
type UpdateRequest struct {
	Name     *string
	Category *string
	Price    *float64
	ImageURL *string
}

// Product is the backend's product payload.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"imageUrl"`
	ImagePublicID string  `json:"imagePublicId"`
	IsActive      bool    `json:"isActive"`
	DateCreated   string  `json:"dateCreated"`
}

// ProductList is the reply of GetAllProducts.
type ProductList struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Count    int32     `json:"count"`
	Products []Product `json:"products"`
}

// ProductReply is the reply of single-product operations.
type ProductReply struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

// DeleteReply is the reply of DeleteProduct.
type DeleteReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client holds a lease on the products backend for the duration of one request.
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

// GetAllProducts lists the active catalog.
func (c *Client) GetAllProducts(ctx context.Context) (*ProductList, error) {
	var reply ProductList
	if err := c.lease.Call(ctx, Schema.Method(MethodGetAllProducts), backend.NewFields(), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetProductByID fetches one product.
func (c *Client) GetProductByID(ctx context.Context, id string) (*ProductReply, error) {
	var reply ProductReply
	if err := c.lease.Call(ctx, Schema.Method(MethodGetProductByID), backend.NewFields().Set("id", id), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, req CreateRequest) (*ProductReply, error) {
	fields := backend.NewFields().
		Set("name", req.Name).
		Set("category", req.Category).
		Set("price", req.Price).
		Set("imageUrl", req.ImageURL)

	var reply ProductReply
	if err := c.lease.Call(ctx, Schema.Method(MethodCreateProduct), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// UpdateProduct applies a partial update.
func (c *Client) UpdateProduct(ctx context.Context, id string, req UpdateRequest) (*ProductReply, error) {
	fields := backend.NewFields().Set("id", id)
	backend.SetOptional(fields, "name", req.Name)
	backend.SetOptional(fields, "category", req.Category)
	backend.SetOptional(fields, "price", req.Price)
	backend.SetOptional(fields, "imageUrl", req.ImageURL)

	var reply ProductReply
	if err := c.lease.Call(ctx, Schema.Method(MethodUpdateProduct), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// DeleteProduct soft-deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) (*DeleteReply, error) {
	var reply DeleteReply
	if err := c.lease.Call(ctx, Schema.Method(MethodDeleteProduct), backend.NewFields().Set("id", id), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
