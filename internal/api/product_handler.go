package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/products"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
)

// ProductHandler handles catalog requests. Product replies carry a success
// flag; a false flag is answered with the backend's message.
type ProductHandler struct {
	open   ProductsOpener
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(open ProductsOpener, logger *slog.Logger) *ProductHandler {
	if open == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("products opener cannot be nil for ProductHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProductHandler")
	}

	return &ProductHandler{
		open:   open,
		logger: logger.With(slog.String("component", "product_handler")),
	}
}

// ListProducts handles GET /products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	c, err := h.open(r.Context())
	if err != nil {
		productResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	list, err := c.GetAllProducts(r.Context())
	if err != nil {
		productResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	if !list.Success {
		productResource.rejected(w, r, http.StatusBadRequest, list.Message)
		return
	}

	out := ProductListResponse{Success: true, Count: list.Count, Products: make([]ProductResponse, 0, len(list.Products))}
	for i := range list.Products {
		out.Products = append(out.Products, *productToResponse(&list.Products[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetProduct handles GET /products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		productResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	defer c.Close()

	reply, err := c.GetProductByID(r.Context(), id)
	if err != nil {
		productResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	if !reply.Success {
		productResource.rejected(w, r, http.StatusNotFound, reply.Message)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProductEnvelope{
		Success: true,
		Product: productToResponse(reply.Product),
	})
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		productResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	reply, err := c.CreateProduct(r.Context(), products.CreateRequest{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		productResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	if !reply.Success {
		productResource.rejected(w, r, http.StatusBadRequest, reply.Message)
		return
	}

	product := productToResponse(reply.Product)
	if product != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("product created",
			slog.String("product_id", product.ID))
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, ProductEnvelope{
		Success: true,
		Message: reply.Message,
		Product: product,
	})
}

// UpdateProduct handles PATCH /products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateProductRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		productResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	reply, err := c.UpdateProduct(r.Context(), id, products.UpdateRequest{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		productResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	if !reply.Success {
		productResource.rejected(w, r, http.StatusBadRequest, reply.Message)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProductEnvelope{
		Success: true,
		Message: reply.Message,
		Product: productToResponse(reply.Product),
	})
}

// DeleteProduct handles DELETE /products/{id}. The backend performs a soft delete.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		productResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	defer c.Close()

	reply, err := c.DeleteProduct(r.Context(), id)
	if err != nil {
		productResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	if !reply.Success {
		productResource.rejected(w, r, http.StatusNotFound, reply.Message)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProductDeleteResponse{Success: true, Message: reply.Message})
}
