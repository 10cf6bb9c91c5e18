// Package store provides the product sources the catalog is read from.
package store

import (
	"context"

	"github.com/abgdnv/storefront/internal/catalog"
)

// ProductStore is an interface for product read operations.
// It abstracts the underlying data source, allowing for different implementations (in-memory, database, remote API).
// Every method may fail; failures are reported as *errors.FetchError.
type ProductStore interface {
	// ListAll returns every product in source order.
	ListAll(ctx context.Context) ([]catalog.Product, error)

	// GetByID retrieves a single product by its identifier.
	// The boolean is false when no product has the given ID; that is not an error.
	GetByID(ctx context.Context, id int64) (catalog.Product, bool, error)

	// ListByCategory returns the products of a single category.
	ListByCategory(ctx context.Context, category string) ([]catalog.Product, error)

	// Search returns the products whose title, category or description contains text.
	Search(ctx context.Context, text string) ([]catalog.Product, error)

	// Filter answers a full catalog query.
	Filter(ctx context.Context, q catalog.Query) ([]catalog.Product, error)

	// ListCategories returns the distinct categories in ascending order.
	ListCategories(ctx context.Context) ([]string, error)
}
