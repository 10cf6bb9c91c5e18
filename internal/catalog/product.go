// Package catalog holds the product model and the query engine that filters and orders it.
package catalog

import "github.com/shopspring/decimal"

// Product is an immutable catalog record.
type Product struct {
	ID          int64           `json:"Id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	Description string          `json:"description"`
}

// ColorOption is a named colour with its CSS value.
type ColorOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductVariants lists the selectable options of a product.
type ProductVariants struct {
	Sizes  []string      `json:"sizes"`
	Colors []ColorOption `json:"colors"`
	Images []string      `json:"images"`
}

var (
	variantSizes  = []string{"S", "M", "L", "XL"}
	variantColors = []ColorOption{
		{Name: "Black", Value: "#000000"},
		{Name: "Navy", Value: "#1e3a8a"},
		{Name: "Gray", Value: "#6b7280"},
		{Name: "White", Value: "#ffffff"},
	}
)

const variantImages = 4

// VariantsOf returns the variant catalogue of p. Every product shares the same
// sizes and colours; the gallery repeats the product image.
func VariantsOf(p Product) ProductVariants {
	images := make([]string, variantImages)
	for i := range images {
		images[i] = p.Image
	}
	return ProductVariants{
		Sizes:  append([]string(nil), variantSizes...),
		Colors: append([]ColorOption(nil), variantColors...),
		Images: images,
	}
}
