package cart

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// DefaultVariant stands in for a size or colour that was not chosen.
const DefaultVariant = "default"

// Variant is the size and colour picked for a product.
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Label renders the chosen options, e.g. "Size: S, Color: Black". Empty when nothing was chosen.
func (v Variant) Label() string {
	var parts []string
	if isChosen(v.Size) {
		parts = append(parts, "Size: "+v.Size)
	}
	if isChosen(v.Color) {
		parts = append(parts, "Color: "+v.Color)
	}
	return strings.Join(parts, ", ")
}

func isChosen(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != DefaultVariant
}

func orDefault(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return DefaultVariant
	}
	return s
}

// Identity keys a line item. Two additions with the same identity merge.
type Identity struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// NewIdentity builds an identity, substituting DefaultVariant for blank options.
func NewIdentity(productID int64, size, color string) Identity {
	return Identity{ProductID: productID, Size: orDefault(size), Color: orDefault(color)}
}

func (id Identity) String() string {
	return fmt.Sprintf("%d/%s/%s", id.ProductID, id.Size, id.Color)
}

// ProductSnapshot is the copy of a product stored inside a line item.
// It carries no variant so a later selection cannot leak into it.
type ProductSnapshot struct {
	ID          int64           `json:"Id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	Description string          `json:"description"`
}

// ProductSelection is a product together with the variant the shopper picked.
type ProductSelection struct {
	Product catalog.Product
	Variant Variant
}

// Snapshot strips the variant and returns the product fields only.
func (s ProductSelection) Snapshot() ProductSnapshot {
	p := s.Product
	return ProductSnapshot{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		InStock:     p.InStock,
		Description: p.Description,
	}
}

// Identity returns the line item key of the selection.
func (s ProductSelection) Identity() Identity {
	return NewIdentity(s.Product.ID, s.Variant.Size, s.Variant.Color)
}

// LineItem is one cart entry. Quantity is always positive.
type LineItem struct {
	ProductID int64           `json:"productId"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
}

func (l LineItem) Identity() Identity {
	return NewIdentity(l.ProductID, l.Size, l.Color)
}

// Subtotal is the snapshot price times the quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) variant() Variant {
	return Variant{Size: l.Size, Color: l.Color}
}
