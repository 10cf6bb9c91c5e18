// Package app contains the application setup for the storefront service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/cart/storage"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/service"
	"github.com/abgdnv/storefront/internal/catalog/store"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/notify"
	grpcImpl "github.com/abgdnv/storefront/internal/transport/grpc"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/messaging"
	pkgnats "github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
)

type Dependencies struct {
	CatalogService service.CatalogService
	Cart           *cart.Cart
	Health         *grpcImpl.HealthReporter
	Logger         *slog.Logger

	closers []func(ctx context.Context) error
}

// NewDependencies wires the services around an already opened product store and cart storage.
// Used by E2E tests to build the application without external infrastructure.
func NewDependencies(ctx context.Context, products store.ProductStore, kv cart.Storage, notifier notify.Notifier, cartKey string, logger *slog.Logger) *Dependencies {
	cService := service.NewService(products)
	return &Dependencies{
		CatalogService: cService,
		Cart:           cart.New(ctx, kv, notifier, logger.With("component", "cart"), cart.WithStorageKey(cartKey)),
		Health:         grpcImpl.NewHealthReporter(cService, 0, logger),
		Logger:         logger,
	}
}

// SetupDependencies opens the catalog source, the cart storage and the
// notification sinks selected by cfg. Release them with Close.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (deps *Dependencies, err error) {
	var closers []func(context.Context) error
	defer func() {
		if err != nil {
			closeAll(ctx, closers)
		}
	}()

	products, closeStore, err := openProductStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	kv, err := storage.Open(cfg.Cart.Storage.Driver, cfg.Cart.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart storage: %w", err)
	}
	closers = append(closers, func(context.Context) error { return kv.Close() })
	logger.Info("Cart storage opened", "driver", cfg.Cart.Storage.Driver, "path", cfg.Cart.Storage.Path)

	notifier, closeNotifier, err := setupNotifier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeNotifier != nil {
		closers = append(closers, closeNotifier)
	}

	deps = NewDependencies(ctx, products, kv, notifier, cfg.Cart.StorageKey, logger)
	deps.Health = grpcImpl.NewHealthReporter(deps.CatalogService, cfg.Catalog.Remote.Timeout, logger)
	deps.closers = closers
	return deps, nil
}

// openProductStore returns the configured catalog source and, when it holds resources, a closer.
func openProductStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(context.Context) error, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		if cfg.Database.MigrationsPath != "" {
			if err := bootstrap.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL, true); err != nil {
				return nil, nil, err
			}
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		logger.Info("Successfully connected to the database!")
		return store.NewPgStore(dbPool), func(context.Context) error { dbPool.Close(); return nil }, nil
	case config.SourceRemote:
		logger.Info("Using remote catalog", "url", cfg.Catalog.Remote.URL)
		return store.NewRemoteStore(cfg.Catalog.Remote.URL, cfg.Catalog.Remote.Timeout, nil, cfg.Resilience, logger.With("component", "catalog-remote")), nil, nil
	default:
		var (
			products []catalog.Product
			err      error
		)
		if cfg.Catalog.File != "" {
			products, err = store.LoadProductsFile(cfg.Catalog.File)
		} else {
			products, err = store.SeedProducts()
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		logger.Info("Using in-memory catalog", "products", len(products), "latency", cfg.Catalog.Latency)
		return store.NewInMemoryStore(products, cfg.Catalog.Latency), nil, nil
	}
}

// setupNotifier always logs notifications and additionally publishes them to NATS when enabled.
func setupNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.Notifier, func(context.Context) error, error) {
	logSink := notify.NewLog(logger)
	if !cfg.Nats.Enabled {
		return logSink, nil, nil
	}
	nc, err := pkgnats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pkgnats.NewJetStreamContext(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	if err := pkgnats.EnsureStream(ctx, js, messaging.CartNotificationsStream, cfg.Nats.Subject); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Publishing cart notifications to NATS", "subject", cfg.Nats.Subject)

	publisher := notify.NewPublisher(pkgnats.NewNatsPublisher(js), cfg.Nats.Subject, cfg.Nats.Timeout, logger)
	closeFn := func(ctx context.Context) error {
		err := publisher.Close(ctx)
		nc.Close()
		return err
	}
	return notify.Multi{logSink, publisher}, closeFn, nil
}

// Close releases everything SetupDependencies opened, in reverse order.
func (d *Dependencies) Close(ctx context.Context) error {
	return closeAll(ctx, d.closers)
}

func closeAll(ctx context.Context, closers []func(context.Context) error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetupHttpHandler initializes the routes and middleware of the storefront API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	return newRouter(deps)
}

func newRouter(deps *Dependencies) *chi.Mux {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.CatalogService, deps.Cart, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an instrumented HTTP server for the storefront API.
// A non-nil metrics handler is mounted at the configured scrape path when metrics are enabled.
func SetupHttpServer(deps *Dependencies, cfg *config.Config, metrics http.Handler) *http.Server {
	mux := newRouter(deps)
	if metrics != nil && cfg.Telemetry.Metrics.Enabled {
		mux.Method(http.MethodGet, cfg.Telemetry.Metrics.Path, metrics)
	}
	return server.NewHTTPServer(cfg.HTTPServer, server.Instrument(mux, "storefront-http"))
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.WithHealth(deps.Health.Server()))
}
