package main

import (
	"encoding/json"
	"fmt"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/service"
	"github.com/abgdnv/storefront/internal/catalog/store"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	source   string
	file     string
	search   string
	category string
	sort     string
	min      string
	max      string
}

func newQueryCmd(opts *globalOptions) *cobra.Command {
	q := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter the catalog and print the matching products as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts, q)
		},
	}
	cmd.Flags().StringVar(&q.source, "source", config.SourceMemory, "catalog source: memory or postgres")
	cmd.Flags().StringVar(&q.file, "file", "", "JSON catalogue for the memory source")
	cmd.Flags().StringVar(&q.search, "search", "", "case-insensitive text matched against title, category and description")
	cmd.Flags().StringVar(&q.category, "category", "", "exact category")
	cmd.Flags().StringVar(&q.sort, "sort", "", "price-low, price-high, newest or popular")
	cmd.Flags().StringVar(&q.min, "min", "", "minimum price, inclusive")
	cmd.Flags().StringVar(&q.max, "max", "", "maximum price, inclusive")
	return cmd
}

// build converts the flags into a catalog query. A missing price bound stays open.
func (q *queryOptions) build() (catalog.Query, error) {
	query := catalog.Query{
		SearchText: q.search,
		Category:   q.category,
		SortBy:     catalog.ParseSortBy(q.sort),
	}
	if q.min == "" && q.max == "" {
		return query, nil
	}
	pr := catalog.DefaultPriceRange()
	if q.min != "" {
		v, err := decimal.NewFromString(q.min)
		if err != nil {
			return query, fmt.Errorf("invalid --min: %w", err)
		}
		pr = pr.WithMin(v)
	}
	if q.max != "" {
		v, err := decimal.NewFromString(q.max)
		if err != nil {
			return query, fmt.Errorf("invalid --max: %w", err)
		}
		pr = pr.WithMax(v)
	}
	query.PriceRange = &pr
	return query, nil
}

func runQuery(cmd *cobra.Command, opts *globalOptions, q *queryOptions) error {
	query, err := q.build()
	if err != nil {
		return err
	}

	var products store.ProductStore
	switch q.source {
	case config.SourceMemory:
		items, err := loadProducts(q.file)
		if err != nil {
			return err
		}
		products = store.NewInMemoryStore(items, 0)
	case config.SourcePostgres:
		cfg, err := opts.requireDatabase()
		if err != nil {
			return err
		}
		dbPool, err := bootstrap.NewDbPool(cmd.Context(), cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		products = store.NewPgStore(dbPool)
	default:
		return fmt.Errorf("unsupported source: %q", q.source)
	}

	result, err := service.NewService(products).Filter(cmd.Context(), query)
	if err != nil {
		return err
	}
	opts.logger(cmd).DebugContext(cmd.Context(), "Query answered", "results", len(result))
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
