package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = "id, title, price::text, image, category, in_stock, description"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func (p *PgStore) ListAll(ctx context.Context) ([]catalog.Product, error) {
	return p.query(ctx, "ListAll", "SELECT "+productColumns+" FROM products ORDER BY id")
}

// GetByID retrieves a product by its identifier.
// A missing row is reported through the boolean, not as an error.
func (p *PgStore) GetByID(ctx context.Context, id int64) (catalog.Product, bool, error) {
	row := p.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, false, nil
		}
		return catalog.Product{}, false, perrors.NewFetchError("GetByID", fmt.Errorf("failed to find product by ID: %w", err))
	}
	return product, true, nil
}

func (p *PgStore) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	return p.query(ctx, "ListByCategory",
		"SELECT "+productColumns+" FROM products WHERE category = $1 ORDER BY id", category)
}

func (p *PgStore) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	return p.Filter(ctx, catalog.Query{SearchText: text})
}

// Filter translates the query into a single SQL statement.
// Ties in price keep id order, matching the in-memory engine.
func (p *PgStore) Filter(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	sql, args := buildFilterSQL(q)
	return p.query(ctx, "Filter", sql, args...)
}

func (p *PgStore) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, "SELECT DISTINCT category FROM products WHERE btrim(category) <> '' ORDER BY category")
	if err != nil {
		return nil, perrors.NewFetchError("ListCategories", fmt.Errorf("failed to list categories: %w", err))
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, perrors.NewFetchError("ListCategories", fmt.Errorf("failed to read categories: %w", err))
	}
	return categories, nil
}

// Upsert inserts the products or overwrites the rows sharing their IDs.
func (p *PgStore) Upsert(ctx context.Context, products []catalog.Product) (int, error) {
	batch := &pgx.Batch{}
	for _, pr := range products {
		batch.Queue(`INSERT INTO products (id, title, price, image, category, in_stock, description)
			VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				price = EXCLUDED.price,
				image = EXCLUDED.image,
				category = EXCLUDED.category,
				in_stock = EXCLUDED.in_stock,
				description = EXCLUDED.description`,
			pr.ID, pr.Title, pr.Price.String(), pr.Image, pr.Category, pr.InStock, pr.Description)
	}
	results := p.db.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for range products {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to upsert product: %w", err)
		}
	}
	return len(products), nil
}

func (p *PgStore) query(ctx context.Context, op, sql string, args ...any) ([]catalog.Product, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, perrors.NewFetchError(op, fmt.Errorf("failed to query products: %w", err))
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, perrors.NewFetchError(op, err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, perrors.NewFetchError(op, fmt.Errorf("failed to read products: %w", err))
	}
	return products, nil
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var (
		product catalog.Product
		price   string
	)
	if err := row.Scan(&product.ID, &product.Title, &price, &product.Image, &product.Category, &product.InStock, &product.Description); err != nil {
		return catalog.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("malformed price %q for product %d: %w", price, product.ID, err)
	}
	product.Price = d
	return product, nil
}

// buildFilterSQL renders q as a parameterised SELECT.
func buildFilterSQL(q catalog.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if text := strings.TrimSpace(q.SearchText); text != "" {
		n := arg(strings.ToLower(text))
		where = append(where, fmt.Sprintf(
			"(strpos(lower(title), %[1]s) > 0 OR strpos(lower(category), %[1]s) > 0 OR strpos(lower(description), %[1]s) > 0)", n))
	}
	if q.Category != "" {
		where = append(where, "category = "+arg(q.Category))
	}
	if q.PriceRange != nil {
		where = append(where, "price >= "+arg(q.PriceRange.Min.String())+"::numeric")
		if q.PriceRange.HasUpperLimit() {
			where = append(where, "price <= "+arg(q.PriceRange.Max.String())+"::numeric")
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " FROM products")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	switch catalog.ParseSortBy(string(q.SortBy)) {
	case catalog.SortPriceLow:
		b.WriteString(" ORDER BY price ASC, id ASC")
	case catalog.SortPriceHigh:
		b.WriteString(" ORDER BY price DESC, id ASC")
	case catalog.SortNewest:
		b.WriteString(" ORDER BY id DESC")
	default:
		b.WriteString(" ORDER BY id ASC")
	}
	return b.String(), args
}
