package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/phrazzld/censudex-gateway/internal/domain"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/backendtest"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/orders"
)

var orderDate = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func orderReply() *backend.Fields {
	return backend.NewFields().
		Set("message", "Pedido creado").
		Set("id", 42).
		Set("user_id", 7).
		Set("total_amount", 29.97).
		Set("current_status", "PENDIENTE").
		Set("delivery_address", "Calle Falsa 123").
		Set("order_date", orderDate).
		Set("items", []*backend.Fields{
			backend.NewFields().Set("item_id", 1).Set("product_id", 3).Set("quantity", 3).Set("price_at_purchase", 9.99),
		})
}

func open(t *testing.T, srv *backendtest.Server) *orders.Client {
	t.Helper()
	c, err := orders.Open(context.Background(), srv.Pool(t, "orders", backend.ModePerRequest))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCreateOrder(t *testing.T) {
	srv := backendtest.NewServer(t, orders.Schema)
	srv.Reply(orders.MethodCreateOrder, orderReply())
	c := open(t, srv)

	order, err := c.CreateOrder(context.Background(), orders.CreateRequest{
		UserID:          7,
		DeliveryAddress: "Calle Falsa 123",
		Items:           []orders.ItemRequest{{ProductID: 3, Quantity: 3}, {ProductID: 5, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, int32(42), order.ID)
	assert.Equal(t, 29.97, order.TotalAmount)
	require.NotNil(t, order.OrderDate)
	assert.True(t, orderDate.Equal(*order.OrderDate))
	assert.Nil(t, order.UpdatedAt)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 9.99, order.Items[0].PriceAtPurchase)

	sent := srv.Calls()[0].Fields()
	assert.Equal(t, float64(7), sent["user_id"])
	items, ok := sent["items_to_create"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestGetAllOrdersFilters(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orderID := int32(0)
	status := "ENVIADO"

	tests := []struct {
		name    string
		filters orders.Filters
		want    map[string]any
	}{
		{
			name:    "no filters",
			filters: orders.Filters{},
			want:    map[string]any{},
		},
		{
			name:    "explicit zero id is forwarded",
			filters: orders.Filters{OrderID: &orderID},
			want:    map[string]any{"order_id": float64(0)},
		},
		{
			name:    "status and start date",
			filters: orders.Filters{Status: &status, StartDate: &start},
			want:    map[string]any{"current_status": "ENVIADO", "start_date": "2025-01-01T00:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backendtest.NewServer(t, orders.Schema)
			srv.Reply(orders.MethodGetAllOrders, backend.NewFields().
				Set("count", 1).
				Set("orders", []*backend.Fields{orderReply().Set("tracking_number", "TRK-1")}))
			c := open(t, srv)

			list, err := c.GetAllOrders(context.Background(), tt.filters)

			require.NoError(t, err)
			assert.Equal(t, int32(1), list.Count)
			require.Len(t, list.Orders, 1)
			assert.Equal(t, "TRK-1", list.Orders[0].TrackingNumber)
			assert.Equal(t, tt.want, srv.Calls()[0].Fields())
		})
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	srv := backendtest.NewServer(t, orders.Schema)
	updated := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	srv.Reply(orders.MethodUpdateOrderStatus, backend.NewFields().
		Set("message", "Estado actualizado").
		Set("id", 42).
		Set("current_status", "ENVIADO").
		Set("updated_at", updated))
	c := open(t, srv)

	tracking := "TRK-9"
	order, err := c.UpdateOrderStatus(context.Background(), 42, orders.StatusUpdate{NewStatus: "ENVIADO", TrackingNumber: &tracking})

	require.NoError(t, err)
	assert.Equal(t, "ENVIADO", order.CurrentStatus)
	require.NotNil(t, order.UpdatedAt)
	assert.True(t, updated.Equal(*order.UpdatedAt))
	assert.Equal(t, map[string]any{
		"id":              float64(42),
		"new_status":      "ENVIADO",
		"tracking_number": "TRK-9",
	}, srv.Calls()[0].Fields())
}

func TestDeleteOrder(t *testing.T) {
	srv := backendtest.NewServer(t, orders.Schema)
	srv.Reply(orders.MethodDeleteOrder, backend.NewFields().Set("message", "Pedido cancelado"))
	c := open(t, srv)

	reply, err := c.DeleteOrder(context.Background(), 42, nil)

	require.NoError(t, err)
	assert.Equal(t, "Pedido cancelado", reply.Message)
	assert.Equal(t, map[string]any{"id": float64(42)}, srv.Calls()[0].Fields())
}

func TestGetOrderByIDNotFound(t *testing.T) {
	srv := backendtest.NewServer(t, orders.Schema)
	srv.Fail(orders.MethodGetOrderByID, codes.NotFound, "order 9 not found")
	c := open(t, srv)

	order, err := c.GetOrderByID(context.Background(), 9)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
