package orders

import "github.com/phrazzld/censudex-gateway/internal/platform/backend"

// Schema is the contract of orders.OrderService.
var Schema = backend.MustSchema(backend.FileSpec{
	Path:    "orders.proto",
	Package: "orders",
	Service: "OrderService",
	Methods: []backend.MethodSpec{
		{Name: MethodCreateOrder, Input: "CreateOrderRequest", Output: "OrderResponse"},
		{Name: MethodGetAllOrders, Input: "GetOrdersRequest", Output: "GetOrdersResponse"},
		{Name: MethodGetOrderByID, Input: "GetOrderByIdRequest", Output: "OrderResponse"},
		{Name: MethodUpdateOrderStatus, Input: "UpdateStatusRequest", Output: "OrderResponse"},
		{Name: MethodDeleteOrder, Input: "DeleteOrderRequest", Output: "DeleteOrderResponse"},
	},
	Messages: []backend.MessageSpec{
		{Name: "OrderItemRequest", Fields: []backend.FieldSpec{
			backend.Int32("product_id", 1),
			backend.Int32("quantity", 2),
		}},
		{Name: "CreateOrderRequest", Fields: []backend.FieldSpec{
			backend.Int32("user_id", 1),
			backend.String("delivery_address", 2),
			backend.Message("items_to_create", 3, "OrderItemRequest").RepeatedField(),
		}},
		{Name: "GetOrdersRequest", Fields: []backend.FieldSpec{
			backend.Int32("order_id", 1).OptionalField(),
			backend.Int32("user_id", 2).OptionalField(),
			backend.String("current_status", 3).OptionalField(),
			backend.Timestamp("start_date", 4),
			backend.Timestamp("end_date", 5),
		}},
		{Name: "OrderItem", Fields: []backend.FieldSpec{
			backend.Int32("item_id", 1),
			backend.Int32("product_id", 2),
			backend.Int32("quantity", 3),
			backend.Double("price_at_purchase", 4),
		}},
		{Name: "OrderResponse", Fields: []backend.FieldSpec{
			backend.String("message", 1),
			backend.Int32("id", 2),
			backend.Int32("user_id", 3),
			backend.Double("total_amount", 4),
			backend.String("current_status", 5),
			backend.String("delivery_address", 6),
			backend.String("tracking_number", 7),
			backend.Timestamp("order_date", 8),
			backend.Timestamp("updated_at", 9),
			backend.Message("items", 10, "OrderItem").RepeatedField(),
		}},
		{Name: "GetOrdersResponse", Fields: []backend.FieldSpec{
			backend.Int32("count", 1),
			backend.Message("orders", 2, "OrderResponse").RepeatedField(),
		}},
		{Name: "GetOrderByIdRequest", Fields: []backend.FieldSpec{
			backend.Int32("id", 1),
		}},
		{Name: "UpdateStatusRequest", Fields: []backend.FieldSpec{
			backend.Int32("id", 1),
			backend.String("new_status", 2),
			backend.String("tracking_number", 3).OptionalField(),
		}},
		{Name: "DeleteOrderRequest", Fields: []backend.FieldSpec{
			backend.Int32("id", 1),
			backend.String("cancellation_reason", 2).OptionalField(),
		}},
		{Name: "DeleteOrderResponse", Fields: []backend.FieldSpec{
			backend.String("message", 1),
		}},
	},
})

// RPC names of orders.OrderService.
const (
	MethodCreateOrder       = "CreateOrder"
	MethodGetAllOrders      = "GetAllOrders"
	MethodGetOrderByID      = "GetOrderById"
	MethodUpdateOrderStatus = "UpdateOrderStatus"
	MethodDeleteOrder       = "DeleteOrder"
)
