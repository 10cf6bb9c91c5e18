package catalog

import "github.com/shopspring/decimal"

var (
	// SliderMin and SliderMax bound the price slider.
	SliderMin = decimal.Zero
	SliderMax = decimal.NewFromInt(500)
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// DefaultPriceRange spans the whole slider domain and admits every product.
func DefaultPriceRange() PriceRange {
	return PriceRange{Min: SliderMin, Max: SliderMax}
}

// NewPriceRange builds a range from the two bounds, applying min first and max second.
func NewPriceRange(min, max decimal.Decimal) PriceRange {
	return PriceRange{}.WithMin(min).WithMax(max)
}

// WithMin sets the lower bound. Negative values become zero and a bound above
// Max drags Max up with it.
func (r PriceRange) WithMin(v decimal.Decimal) PriceRange {
	if v.IsNegative() {
		v = decimal.Zero
	}
	r.Min = v
	if r.Max.LessThan(v) {
		r.Max = v
	}
	return r
}

// WithMax sets the upper bound. Negative values become zero and a bound below
// Min drags Min down with it.
func (r PriceRange) WithMax(v decimal.Decimal) PriceRange {
	if v.IsNegative() {
		v = decimal.Zero
	}
	r.Max = v
	if r.Min.GreaterThan(v) {
		r.Min = v
	}
	return r
}

// HasUpperLimit reports whether Max caps prices. A Max at or beyond the
// slider edge means "no limit".
func (r PriceRange) HasUpperLimit() bool {
	return r.Max.LessThan(SliderMax)
}

// Contains reports whether price lies within the range, bounds included.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	return !r.HasUpperLimit() || price.LessThanOrEqual(r.Max)
}
