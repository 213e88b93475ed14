package api

import (
	"context"

	"github.com/phrazzld/censudex-gateway/internal/platform/authsvc"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/clients"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/orders"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/products"
)

// ClientsBackend is the clients adapter as seen by ClientHandler.
type ClientsBackend interface {
	CreateClient(ctx context.Context, req clients.CreateRequest) (*clients.ClientReply, error)
	GetAllClients(ctx context.Context, filters clients.Filters) (*clients.ClientList, error)
	GetClientByID(ctx context.Context, id string, includePassword bool) (*clients.ClientReply, error)
	UpdateClient(ctx context.Context, id string, req clients.UpdateRequest) (*clients.ClientReply, error)
	UpdatePassword(ctx context.Context, id, password string) (*clients.MessageReply, error)
	DeleteClient(ctx context.Context, id string) (*clients.MessageReply, error)
	Close()
}

// ProductsBackend is the products adapter as seen by ProductHandler.
type ProductsBackend interface {
	GetAllProducts(ctx context.Context) (*products.ProductList, error)
	GetProductByID(ctx context.Context, id string) (*products.ProductReply, error)
	CreateProduct(ctx context.Context, req products.CreateRequest) (*products.ProductReply, error)
	UpdateProduct(ctx context.Context, id string, req products.UpdateRequest) (*products.ProductReply, error)
	DeleteProduct(ctx context.Context, id string) (*products.DeleteReply, error)
	Close()
}

// OrdersBackend is the orders adapter as seen by OrderHandler.
type OrdersBackend interface {
	CreateOrder(ctx context.Context, req orders.CreateRequest) (*orders.Order, error)
	GetAllOrders(ctx context.Context, filters orders.Filters) (*orders.OrderList, error)
	GetOrderByID(ctx context.Context, id int32) (*orders.Order, error)
	UpdateOrderStatus(ctx context.Context, id int32, update orders.StatusUpdate) (*orders.Order, error)
	DeleteOrder(ctx context.Context, id int32, reason *string) (*orders.MessageReply, error)
	Close()
}

// AuthService is the auth microservice as seen by AuthHandler. Replies are
// relayed to the caller verbatim.
type AuthService interface {
	Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.Reply, error)
	Validate(ctx context.Context, token string) (*authsvc.Reply, error)
	Logout(ctx context.Context, token string) (*authsvc.Reply, error)
}

// Openers acquire an adapter for the duration of one request. The caller
// must Close what it receives.
type (
	ClientsOpener  func(ctx context.Context) (ClientsBackend, error)
	ProductsOpener func(ctx context.Context) (ProductsBackend, error)
	OrdersOpener   func(ctx context.Context) (OrdersBackend, error)
)

// ClientsFromPool opens clients adapters on pool.
func ClientsFromPool(pool *backend.Pool) ClientsOpener {
	return func(ctx context.Context) (ClientsBackend, error) {
		c, err := clients.Open(ctx, pool)
		if err != nil {
			// a nil *clients.Client must not become a non-nil interface
			return nil, err
		}
		return c, nil
	}
}

// ProductsFromPool opens products adapters on pool.
func ProductsFromPool(pool *backend.Pool) ProductsOpener {
	return func(ctx context.Context) (ProductsBackend, error) {
		c, err := products.Open(ctx, pool)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// OrdersFromPool opens orders adapters on pool.
func OrdersFromPool(pool *backend.Pool) OrdersOpener {
	return func(ctx context.Context) (OrdersBackend, error) {
		c, err := orders.Open(ctx, pool)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
