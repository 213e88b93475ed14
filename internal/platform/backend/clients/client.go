// Package clients is the adapter for the clients gRPC backend.
package clients

import (
	"context"

	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
)

// CreateRequest holds the fields of a new client account. All are required.
type CreateRequest struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	BirthDate string
	Address   string
	Phone     string
}

// Filters narrows GetAllClients. Nil fields are not sent.
type Filters struct {
	Name     *string
	Email    *string
	Username *string
	IsActive *string
}

// UpdateRequest is a partial update. Nil fields are not sent.
type UpdateRequest struct {
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
	BirthDate *string
	Address   *string
	Phone     *string
}

// Record is a client as reported by the backend.
type Record struct {
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
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ClientReply is the backend's reply for single-client operations.
type ClientReply struct {
	Message string `json:"message"`
	Record
}

// ClientList is the reply of GetAllClients.
type ClientList struct {
	Count   int32    `json:"count"`
	Clients []Record `json:"clients"`
}

// MessageReply carries only a status message.
type MessageReply struct {
	Message string `json:"message"`
}

// Client holds a lease on the clients backend for the duration of one request.
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

// CreateClient registers a new client account.
func (c *Client) CreateClient(ctx context.Context, req CreateRequest) (*ClientReply, error) {
	fields := backend.NewFields().
		Set("firstName", req.FirstName).
		Set("lastName", req.LastName).
		Set("email", req.Email).
		Set("username", req.Username).
		Set("password", req.Password).
		Set("birthDate", req.BirthDate).
		Set("address", req.Address).
		Set("phone", req.Phone)

	var reply ClientReply
	if err := c.lease.Call(ctx, Schema.Method(MethodCreateClient), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetAllClients lists clients matching the supplied filters.
func (c *Client) GetAllClients(ctx context.Context, filters Filters) (*ClientList, error) {
	fields := backend.NewFields()
	backend.SetOptional(fields, "name", filters.Name)
	backend.SetOptional(fields, "email", filters.Email)
	backend.SetOptional(fields, "username", filters.Username)
	backend.SetOptional(fields, "isActive", filters.IsActive)

	var reply ClientList
	if err := c.lease.Call(ctx, Schema.Method(MethodGetAllClients), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetClientByID fetches one client. includePassword asks the backend to
// return the password hash; the gateway never sets it.
func (c *Client) GetClientByID(ctx context.Context, id string, includePassword bool) (*ClientReply, error) {
	fields := backend.NewFields().Set("id", id).Set("includePassword", includePassword)

	var reply ClientReply
	if err := c.lease.Call(ctx, Schema.Method(MethodGetClientByID), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// UpdateClient applies a partial update.
func (c *Client) UpdateClient(ctx context.Context, id string, req UpdateRequest) (*ClientReply, error) {
	fields := backend.NewFields().Set("id", id)
	backend.SetOptional(fields, "firstName", req.FirstName)
	backend.SetOptional(fields, "lastName", req.LastName)
	backend.SetOptional(fields, "email", req.Email)
	backend.SetOptional(fields, "username", req.Username)
	backend.SetOptional(fields, "birthDate", req.BirthDate)
	backend.SetOptional(fields, "address", req.Address)
	backend.SetOptional(fields, "phone", req.Phone)

	var reply ClientReply
	if err := c.lease.Call(ctx, Schema.Method(MethodUpdateClient), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// UpdatePassword replaces a client's password.
func (c *Client) UpdatePassword(ctx context.Context, id, password string) (*MessageReply, error) {
	fields := backend.NewFields().Set("id", id).Set("password", password)

	var reply MessageReply
	if err := c.lease.Call(ctx, Schema.Method(MethodUpdatePassword), fields, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// DeleteClient removes a client.
func (c *Client) DeleteClient(ctx context.Context, id string) (*MessageReply, error) {
	var reply MessageReply
	if err := c.lease.Call(ctx, Schema.Method(MethodDeleteClient), backend.NewFields().Set("id", id), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
