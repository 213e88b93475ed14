package products

import "github.com/phrazzld/censudex-gateway/internal/platform/backend"

// Schema is the contract of products.ProductService.
var Schema = backend.MustSchema(backend.FileSpec{
	Path:    "products.proto",
	Package: "products",
	Service: "ProductService",
	Methods: []backend.MethodSpec{
		{Name: MethodGetAllProducts, Input: "GetAllProductsRequest", Output: "GetAllProductsResponse"},
		{Name: MethodGetProductByID, Input: "GetProductByIdRequest", Output: "ProductResponse"},
		{Name: MethodCreateProduct, Input: "CreateProductRequest", Output: "ProductResponse"},
		{Name: MethodUpdateProduct, Input: "UpdateProductRequest", Output: "ProductResponse"},
		{Name: MethodDeleteProduct, Input: "DeleteProductRequest", Output: "DeleteProductResponse"},
	},
	Messages: []backend.MessageSpec{
		{Name: "Product", Fields: []backend.FieldSpec{
			backend.String("id", 1),
			backend.String("name", 2),
			backend.String("category", 3),
			backend.Double("price", 4),
			backend.String("imageUrl", 5),
			backend.String("imagePublicId", 6),
			backend.Bool("isActive", 7),
			backend.String("dateCreated", 8),
		}},
		{Name: "GetAllProductsRequest"},
		{Name: "GetAllProductsResponse", Fields: []backend.FieldSpec{
			backend.Bool("success", 1),
			backend.String("message", 2),
			backend.Int32("count", 3),
			backend.Message("products", 4, "Product").RepeatedField(),
		}},
		{Name: "GetProductByIdRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
		}},
		{Name: "ProductResponse", Fields: []backend.FieldSpec{
			backend.Bool("success", 1),
			backend.String("message", 2),
			backend.Message("product", 3, "Product"),
		}},
		{Name: "CreateProductRequest", Fields: []backend.FieldSpec{
			backend.String("name", 1),
			backend.String("category", 2),
			backend.Double("price", 3),
			backend.String("imageUrl", 4),
		}},
		{Name: "UpdateProductRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
			backend.String("name", 2).OptionalField(),
			backend.String("category", 3).OptionalField(),
			backend.Double("price", 4).OptionalField(),
			backend.String("imageUrl", 5).OptionalField(),
		}},
		{Name: "DeleteProductRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
		}},
		{Name: "DeleteProductResponse", Fields: []backend.FieldSpec{
			backend.Bool("success", 1),
			backend.String("message", 2),
		}},
	},
})

// RPC names of products.ProductService.
const (
	MethodGetAllProducts = "GetAllProducts"
	MethodGetProductByID = "GetProductById"
	MethodCreateProduct  = "CreateProduct"
	MethodUpdateProduct  = "UpdateProduct"
	MethodDeleteProduct  = "DeleteProduct"
)
