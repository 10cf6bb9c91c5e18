package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/errors"
)

//go:embed products.json
var seedProducts []byte

// SeedProducts returns the built-in mock catalogue.
func SeedProducts() ([]catalog.Product, error) {
	return decodeProducts(seedProducts)
}

// LoadProductsFile reads a JSON array of products from path.
func LoadProductsFile(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}
	return decodeProducts(data)
}

func decodeProducts(data []byte) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}
	return products, nil
}

// inMemory implements ProductStore over a fixed record set.
type inMemory struct {
	products []catalog.Product
	latency  time.Duration
}

// NewInMemoryStore creates a ProductStore serving products in the given order.
// Each call waits for latency first, emulating a network round trip.
func NewInMemoryStore(products []catalog.Product, latency time.Duration) ProductStore {
	return &inMemory{
		products: slices.Clone(products),
		latency:  latency,
	}
}

// wait sleeps for the configured latency or until ctx is done.
func (s *inMemory) wait(ctx context.Context, op string) error {
	if s.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return perrors.NewFetchError(op, err)
		}
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return perrors.NewFetchError(op, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (s *inMemory) ListAll(ctx context.Context) ([]catalog.Product, error) {
	if err := s.wait(ctx, "ListAll"); err != nil {
		return nil, err
	}
	return slices.Clone(s.products), nil
}

func (s *inMemory) GetByID(ctx context.Context, id int64) (catalog.Product, bool, error) {
	if err := s.wait(ctx, "GetByID"); err != nil {
		return catalog.Product{}, false, err
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return catalog.Product{}, false, nil
}

func (s *inMemory) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	if err := s.wait(ctx, "ListByCategory"); err != nil {
		return nil, err
	}
	return catalog.ByCategory(s.products, category), nil
}

func (s *inMemory) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	if err := s.wait(ctx, "Search"); err != nil {
		return nil, err
	}
	return catalog.Search(s.products, text), nil
}

func (s *inMemory) Filter(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	if err := s.wait(ctx, "Filter"); err != nil {
		return nil, err
	}
	return catalog.Filter(s.products, q), nil
}

func (s *inMemory) ListCategories(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx, "ListCategories"); err != nil {
		return nil, err
	}
	return catalog.Categories(s.products), nil
}
