package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/phrazzld/censudex-gateway/internal/api"
	"github.com/phrazzld/censudex-gateway/internal/api/middleware"
	"github.com/phrazzld/censudex-gateway/internal/api/shared"
)

const (
	serviceName    = "API Gateway"
	gatewayName    = "Censudex API Gateway"
	gatewayVersion = "1.0.0"
)

// setupRouter creates and configures the HTTP router with every gateway
// route and its middleware chain.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Trace(app.logger))
	r.Use(middleware.RouteSpan)
	r.Use(middleware.CORS(app.config.CORS))
	if app.config.Metrics.Enabled {
		r.Use(middleware.Metrics(app.metrics))
	}

	clientHandler := api.NewClientHandler(api.ClientsFromPool(app.clientsPool), app.logger)
	productHandler := api.NewProductHandler(api.ProductsFromPool(app.productsPool), app.logger)
	orderHandler := api.NewOrderHandler(api.OrdersFromPool(app.ordersPool), app.logger)
	authHandler := api.NewAuthHandler(app.auth, app.logger)

	authMiddleware := middleware.NewAuthMiddleware(app.auth,
		middleware.WithDistinguishUnavailable(app.config.Auth.DistinguishUnavailable),
		middleware.WithRejectionObserver(app.metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
			"status":  "OK",
			"service": serviceName,
		})
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
			"message": gatewayName,
			"version": gatewayVersion,
		})
	})
	if app.config.Metrics.Enabled {
		r.Method(http.MethodGet, app.config.Metrics.Path, app.metrics.Handler())
	}

	routes := func(r chi.Router) {
		// Public routes
		r.Post("/clients", clientHandler.CreateClient)
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{id}", productHandler.GetProduct)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/validate-token", authHandler.ValidateToken)
			r.Post("/logout", authHandler.Logout)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/clients", clientHandler.ListClients)
			r.Get("/clients/{id}", clientHandler.GetClient)
			r.Patch("/clients/{id}", clientHandler.UpdateClient)
			r.Patch("/clients/{id}/password", clientHandler.UpdatePassword)
			r.Delete("/clients/{id}", clientHandler.DeleteClient)

			r.Post("/products", productHandler.CreateProduct)
			r.Patch("/products/{id}", productHandler.UpdateProduct)
			r.Delete("/products/{id}", productHandler.DeleteProduct)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Patch("/orders/{id}/status", orderHandler.UpdateOrderStatus)
			r.Delete("/orders/{id}", orderHandler.DeleteOrder)
		})
	}

	if base := app.config.Server.BasePath; base != "" && base != "/" {
		r.Route(base, routes)
	} else {
		routes(r)
	}

	return otelhttp.NewHandler(r, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}))
}
