package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/pkg/web"
)

// FindProducts answers a filtered, sorted product listing.
// Query parameters: search, category, sort, min, max. A missing bound stays
// open and inverted bounds are clamped, min applied first.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query()
	minPrice, ok := web.ParseOptionalDecimal(r, w, mLogger, "min")
	if !ok {
		return
	}
	maxPrice, ok := web.ParseOptionalDecimal(r, w, mLogger, "max")
	if !ok {
		return
	}
	q := catalog.Query{
		SearchText: query.Get("search"),
		Category:   query.Get("category"),
		SortBy:     catalog.ParseSortBy(query.Get("sort")),
	}
	if minPrice != nil || maxPrice != nil {
		pr := catalog.DefaultPriceRange()
		if minPrice != nil {
			pr = pr.WithMin(*minPrice)
		}
		if maxPrice != nil {
			pr = pr.WithMax(*maxPrice)
		}
		q.PriceRange = &pr
	}

	mLogger.DebugContext(r.Context(), "Received request to filter products", "query", q)
	list, err := h.catalog.Filter(r.Context(), q)
	if err != nil {
		respondServiceError(w, mLogger, err, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully filtered products", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Featured returns the newest products.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseOptionalGt(r, w, mLogger, "limit", 0, catalog.DefaultFeaturedLimit)
	if !ok {
		return
	}
	list, err := h.catalog.Featured(r.Context(), int(limit))
	if err != nil {
		respondServiceError(w, mLogger, err, "Failed to fetch featured products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, exists, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	if !exists {
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Variants returns the sizes, colours and images offered for a product.
func (h *Handler) Variants(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	variants, exists, err := h.catalog.Variants(r.Context(), id)
	if err != nil {
		respondServiceError(w, mLogger, err, fmt.Sprintf("Failed to retrieve variants of product %d", id))
		return
	}
	if !exists {
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, variants)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, mLogger, err, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, categories)
}

// BrowseState returns the current browse view.
func (h *Handler) BrowseState(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, h.view.State())
}

// Browse runs a query through the browse view. A failed fetch is reported in
// the returned state rather than as an HTTP error.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var q catalog.Query
	// an empty body browses the whole catalog
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil && !errors.Is(err, io.EOF) {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	q.SortBy = catalog.ParseSortBy(string(q.SortBy))
	state := h.view.Refresh(r.Context(), q)
	web.RespondJSON(w, mLogger, http.StatusOK, state)
}
