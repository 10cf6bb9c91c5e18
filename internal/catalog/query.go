package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// SortBy selects the order of a query result.
type SortBy string

const (
	SortPopular   SortBy = "popular"
	SortPriceLow  SortBy = "price-low"
	SortPriceHigh SortBy = "price-high"
	SortNewest    SortBy = "newest"
)

// DefaultFeaturedLimit is the number of featured products returned when no limit is given.
const DefaultFeaturedLimit = 12

// ParseSortBy maps a raw sort key to a SortBy. Unknown keys, including "name", fall back to SortPopular.
func ParseSortBy(s string) SortBy {
	switch v := SortBy(strings.TrimSpace(s)); v {
	case SortPriceLow, SortPriceHigh, SortNewest:
		return v
	default:
		return SortPopular
	}
}

// Query describes a catalog lookup. Zero values disable the corresponding filter.
type Query struct {
	SearchText string      `json:"searchText,omitempty"`
	Category   string      `json:"category,omitempty"`
	SortBy     SortBy      `json:"sortBy,omitempty"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
}

// Filter returns the products matching every active criterion of q, ordered by q.SortBy.
// The input slice is left untouched.
func Filter(products []Product, q Query) []Product {
	text := strings.ToLower(strings.TrimSpace(q.SearchText))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if text != "" && !matchesText(p, text) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.PriceRange != nil && !q.PriceRange.Contains(p.Price) {
			continue
		}
		out = append(out, p)
	}
	Sort(out, q.SortBy)
	return out
}

// Sort orders products in place. The sort is stable, so ties keep their original position.
func Sort(products []Product, by SortBy) {
	switch ParseSortBy(string(by)) {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b Product) int { return b.Price.Cmp(a.Price) })
	case SortNewest:
		slices.SortStableFunc(products, func(a, b Product) int { return cmp.Compare(b.ID, a.ID) })
	}
}

// matchesText expects needle to be lower-cased already.
func matchesText(p Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

// Search returns the products whose title, category or description contains text.
func Search(products []Product, text string) []Product {
	return Filter(products, Query{SearchText: text})
}

// ByCategory returns the products of the given category in their original order.
func ByCategory(products []Product, category string) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct non-blank categories in ascending order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if strings.TrimSpace(p.Category) == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// Featured returns up to limit products, newest first. A non-positive limit means DefaultFeaturedLimit.
func Featured(products []Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	out := Filter(products, Query{SortBy: SortNewest})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
