package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/config"
	"github.com/phrazzld/censudex-gateway/internal/platform/authsvc"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
	"github.com/phrazzld/censudex-gateway/internal/platform/telemetry"
)

// application holds the shared gateway dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger  *slog.Logger
	metrics *telemetry.Metrics

	// One pool per gRPC backend, shared by every request
	clientsPool  *backend.Pool
	ordersPool   *backend.Pool
	productsPool *backend.Pool

	// Auth microservice client
	auth *authsvc.Client

	shutdownTracing telemetry.ShutdownFunc
}

// newApplication creates the backend pools and the auth client. No backend is
// contacted here; unreachable services surface on the first call.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: telemetry.NewMetrics(),
	}

	var err error
	if app.clientsPool, err = app.newPool("clients", cfg.Backends.Clients); err != nil {
		app.cleanup()
		return nil, err
	}
	if app.ordersPool, err = app.newPool("orders", cfg.Backends.Orders); err != nil {
		app.cleanup()
		return nil, err
	}
	if app.productsPool, err = app.newPool("products", cfg.Backends.Products); err != nil {
		app.cleanup()
		return nil, err
	}

	app.auth, err = authsvc.New(authsvc.Config{
		BaseURL:   cfg.Auth.ServiceURL,
		Timeout:   cfg.Auth.Timeout,
		RequestID: shared.GetTraceID,
		Observer:  app.metrics,
		Logger:    logger,
	})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize auth service client: %w", err)
	}

	logger.Info("Application initialized successfully",
		slog.String("clients", cfg.Backends.Clients.Address()),
		slog.String("orders", cfg.Backends.Orders.Address()),
		slog.String("products", cfg.Backends.Products.Address()),
		slog.String("auth_service", cfg.Auth.ServiceURL))
	return app, nil
}

func (app *application) newPool(name string, cfg config.BackendConfig) (*backend.Pool, error) {
	pool, err := backend.NewPool(backend.PoolConfig{
		Name:      name,
		Target:    cfg.Address(),
		Mode:      backend.Mode(app.config.Backends.ConnectionMode),
		Timeout:   cfg.Timeout,
		RequestID: shared.GetTraceID,
		Observer:  app.metrics,
		Logger:    app.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend pool: %w", name, err)
	}
	return pool, nil
}

// Run serves HTTP until ctx is cancelled, then releases every resource.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup closes the backend pools and flushes traces. It is safe to call
// on a partially initialized application.
func (app *application) cleanup() {
	var errs []error
	for _, pool := range []*backend.Pool{app.clientsPool, app.ordersPool, app.productsPool} {
		if pool == nil {
			continue
		}
		if err := pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pool: %w", pool.Name(), err))
		}
	}

	if app.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		if err := app.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
		cancel()
		app.shutdownTracing = nil
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("Error releasing application resources", slog.Any("error", err))
	}
	app.logger.Info("Application shutdown completed")
}
