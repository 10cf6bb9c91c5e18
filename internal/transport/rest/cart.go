package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AddItemDto is the body of POST /api/v1/cart/items. A missing quantity adds one unit.
type AddItemDto struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Size      string `json:"size,omitempty" validate:"max=32"`
	Color     string `json:"color,omitempty" validate:"max=32"`
	Quantity  int    `json:"quantity,omitempty" validate:"gte=0,lte=99"`
}

// UpdateItemDto is the body of PUT /api/v1/cart/items. Quantity 0 removes the item.
type UpdateItemDto struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Size      string `json:"size,omitempty" validate:"max=32"`
	Color     string `json:"color,omitempty" validate:"max=32"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

// CartDto is the cart as returned to clients.
type CartDto struct {
	Items      []cart.LineItem `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	DrawerOpen bool            `json:"drawerOpen"`
}

func (h *Handler) cartDto() CartDto {
	return CartDto{
		Items:      h.cart.Items(),
		Total:      h.cart.Total(),
		Count:      h.cart.ItemCount(),
		DrawerOpen: h.cart.IsDrawerOpen(),
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, h.cartDto())
}

// decodeValid decodes the JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may proceed.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		if web.RespondValidation(w, logger, err) {
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// AddItem looks the product up in the catalog and adds it to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto AddItemDto
	if !h.decodeValid(w, r, mLogger, &dto) {
		return
	}
	product, exists, err := h.catalog.GetByID(r.Context(), dto.ProductID)
	if err != nil {
		respondServiceError(w, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %d", dto.ProductID))
		return
	}
	if !exists {
		mLogger.WarnContext(r.Context(), "Product not found for cart", "ID", dto.ProductID)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", dto.ProductID))
		return
	}
	sel := cart.ProductSelection{Product: product, Variant: cart.Variant{Size: dto.Size, Color: dto.Color}}
	item := h.cart.AddToCart(r.Context(), sel, dto.Quantity)
	mLogger.InfoContext(r.Context(), "Item added to cart", "identity", item.Identity().String(), "quantity", item.Quantity)
	web.RespondJSON(w, mLogger, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto UpdateItemDto
	if !h.decodeValid(w, r, mLogger, &dto) {
		return
	}
	id := cart.NewIdentity(dto.ProductID, dto.Size, dto.Color)
	if !h.cart.UpdateQuantity(r.Context(), id, dto.Quantity) {
		mLogger.WarnContext(r.Context(), "Cart item not found for update", "identity", id.String())
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Cart item %s not found", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.cartDto())
}

// RemoveItem deletes the line item identified by the productId, size and color query parameters.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query()
	raw := query.Get("productId")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid productId: %s", raw))
		return
	}
	id := cart.NewIdentity(productID, query.Get("size"), query.Get("color"))
	if !h.cart.RemoveFromCart(r.Context(), id) {
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Cart item %s not found", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Item removed from cart", "identity", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart(r.Context())
	h.loggerWithReqID(r).InfoContext(r.Context(), "Cart cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Drawer opens, closes or toggles the cart drawer.
func (h *Handler) Drawer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	switch action := chi.URLParam(r, "action"); action {
	case "open":
		h.cart.OpenDrawer()
	case "close":
		h.cart.CloseDrawer()
	case "toggle":
		h.cart.ToggleDrawer()
	default:
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Unknown drawer action: %s", action))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]bool{"drawerOpen": h.cart.IsDrawerOpen()})
}
