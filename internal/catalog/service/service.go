// Package service provides the catalog use cases on top of a product store.
package service

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/store"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abgdnv/storefront/internal/catalog/service"

// CatalogService defines the read operations of the storefront catalog.
type CatalogService interface {
	// ListAll returns every product.
	ListAll(ctx context.Context) ([]catalog.Product, error)

	// GetByID retrieves a single product. The boolean is false when it does not exist.
	GetByID(ctx context.Context, id int64) (catalog.Product, bool, error)

	// ListByCategory returns the products of one category.
	ListByCategory(ctx context.Context, category string) ([]catalog.Product, error)

	// Search returns the products matching text.
	Search(ctx context.Context, text string) ([]catalog.Product, error)

	// Filter answers a full query. Returns ErrInvalidQuery for a malformed price range.
	Filter(ctx context.Context, q catalog.Query) ([]catalog.Product, error)

	// ListCategories returns the distinct categories, sorted.
	ListCategories(ctx context.Context) ([]string, error)

	// Featured returns the newest products, at most limit of them.
	Featured(ctx context.Context, limit int) ([]catalog.Product, error)

	// Variants returns the selectable options of a product. The boolean is false when it does not exist.
	Variants(ctx context.Context, id int64) (catalog.ProductVariants, bool, error)
}

// Service implements CatalogService.
type Service struct {
	store  store.ProductStore
	tracer trace.Tracer
}

// NewService creates a new instance of CatalogService backed by the given store.
func NewService(s store.ProductStore) *Service {
	return &Service{
		store:  s,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) ListAll(ctx context.Context) (products []catalog.Product, err error) {
	ctx, span := s.start(ctx, "ListAll")
	defer func() { finish(span, err) }()

	products, err = s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	span.SetAttributes(attribute.Int("catalog.results", len(products)))
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (product catalog.Product, found bool, err error) {
	ctx, span := s.start(ctx, "GetByID", attribute.Int64("catalog.product_id", id))
	defer func() { finish(span, err) }()

	product, found, err = s.store.GetByID(ctx, id)
	if err != nil {
		return catalog.Product{}, false, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	span.SetAttributes(attribute.Bool("catalog.found", found))
	return product, found, nil
}

func (s *Service) ListByCategory(ctx context.Context, category string) (products []catalog.Product, err error) {
	ctx, span := s.start(ctx, "ListByCategory", attribute.String("catalog.category", category))
	defer func() { finish(span, err) }()

	products, err = s.store.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products of category %q: %w", category, err)
	}
	return products, nil
}

func (s *Service) Search(ctx context.Context, text string) (products []catalog.Product, err error) {
	ctx, span := s.start(ctx, "Search", attribute.String("catalog.search", text))
	defer func() { finish(span, err) }()

	products, err = s.store.Search(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

func (s *Service) Filter(ctx context.Context, q catalog.Query) (products []catalog.Product, err error) {
	ctx, span := s.start(ctx, "Filter",
		attribute.String("catalog.search", q.SearchText),
		attribute.String("catalog.category", q.Category),
		attribute.String("catalog.sort", string(catalog.ParseSortBy(string(q.SortBy)))),
	)
	defer func() { finish(span, err) }()

	if err = validateQuery(q); err != nil {
		return nil, err
	}
	products, err = s.store.Filter(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to filter products: %w", err)
	}
	span.SetAttributes(attribute.Int("catalog.results", len(products)))
	return products, nil
}

func (s *Service) ListCategories(ctx context.Context) (categories []string, err error) {
	ctx, span := s.start(ctx, "ListCategories")
	defer func() { finish(span, err) }()

	categories, err = s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *Service) Featured(ctx context.Context, limit int) (products []catalog.Product, err error) {
	if limit <= 0 {
		limit = catalog.DefaultFeaturedLimit
	}
	ctx, span := s.start(ctx, "Featured", attribute.Int("catalog.limit", limit))
	defer func() { finish(span, err) }()

	products, err = s.store.Filter(ctx, catalog.Query{SortBy: catalog.SortNewest})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (s *Service) Variants(ctx context.Context, id int64) (catalog.ProductVariants, bool, error) {
	product, found, err := s.GetByID(ctx, id)
	if err != nil || !found {
		return catalog.ProductVariants{}, false, err
	}
	return catalog.VariantsOf(product), true, nil
}

func validateQuery(q catalog.Query) error {
	if q.PriceRange == nil {
		return nil
	}
	r := q.PriceRange
	if r.Min.IsNegative() || r.Max.IsNegative() {
		return fmt.Errorf("%w: price bounds must not be negative", perrors.ErrInvalidQuery)
	}
	if r.Min.GreaterThan(r.Max) {
		return fmt.Errorf("%w: min price %s is above max price %s", perrors.ErrInvalidQuery, r.Min, r.Max)
	}
	return nil
}
