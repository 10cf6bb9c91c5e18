package main

import (
	"fmt"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/store"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *globalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert or update catalog products in PostgreSQL",
		Long:  "Upserts the products of --file, or the built-in catalogue when no file is given, into the products table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.requireDatabase()
			if err != nil {
				return err
			}
			products, err := loadProducts(file)
			if err != nil {
				return err
			}
			dbPool, err := bootstrap.NewDbPool(cmd.Context(), cfg.Database.URL, cfg.Database.Timeout)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			n, err := store.NewPgStore(dbPool).Upsert(cmd.Context(), products)
			if err != nil {
				return err
			}
			opts.logger(cmd).InfoContext(cmd.Context(), "Catalog seeded", "products", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file with products (defaults to the built-in catalogue)")
	return cmd
}

func loadProducts(file string) ([]catalog.Product, error) {
	if file == "" {
		return store.SeedProducts()
	}
	return store.LoadProductsFile(file)
}
