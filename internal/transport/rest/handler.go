// Package rest provides HTTP handlers for catalog browsing and the cart.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/service"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Cart is the cart aggregate as used by the handlers.
type Cart interface {
	AddToCart(ctx context.Context, sel cart.ProductSelection, qty int) cart.LineItem
	UpdateQuantity(ctx context.Context, id cart.Identity, qty int) bool
	RemoveFromCart(ctx context.Context, id cart.Identity) bool
	ClearCart(ctx context.Context)
	Total() decimal.Decimal
	ItemCount() int
	Items() []cart.LineItem
	OpenDrawer()
	CloseDrawer()
	ToggleDrawer() bool
	IsDrawerOpen() bool
}

type Handler struct {
	catalog  service.CatalogService
	cart     Cart
	view     *catalog.View
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates the storefront API. The browse view is fed by the catalog service.
func NewHandler(catalogService service.CatalogService, c Cart, logger *slog.Logger) *Handler {
	logger = logger.With("component", "rest")
	return &Handler{
		catalog:  catalogService,
		cart:     c,
		view:     catalog.NewView(catalogService.Filter, logger),
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the HTTP routes of the storefront.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.FindProducts)
			r.Get("/featured", h.Featured)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindByID)
				r.Get("/variants", h.Variants)
			})
		})
		r.Get("/categories", h.Categories)

		r.Get("/browse", h.BrowseState)
		r.Post("/browse", h.Browse)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items", h.UpdateItem)
			r.Delete("/items", h.RemoveItem)
			r.Post("/drawer/{action}", h.Drawer)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps catalog failures onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error, message string) {
	switch {
	case errors.Is(err, perrors.ErrInvalidQuery):
		logger.Warn("Rejected catalog query", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, perrors.ErrFetchFailure):
		logger.Error(message, "error", err)
		web.RespondError(w, logger, http.StatusBadGateway, message)
	default:
		logger.Error(message, "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, message)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
