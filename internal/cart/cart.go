// Package cart holds the shopper's line items and the totals derived from them.
package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/pricing"
)

// DefaultShippingFlat is the flat delivery fee charged on any non-empty cart.
var DefaultShippingFlat = decimal.RequireFromString("3.00")

// Cart is an ordered list of line items in which no two entries share a
// merge key. It is not safe for concurrent use; the storefront controller
// serializes access.
type Cart struct {
	items        []domain.LineItem
	shippingFlat decimal.Decimal
}

// Option configures a Cart.
type Option func(*Cart)

// WithShippingFlat overrides the flat delivery fee.
func WithShippingFlat(fee decimal.Decimal) Option {
	return func(c *Cart) {
		if fee.IsNegative() {
			fee = decimal.Zero
		}
		c.shippingFlat = fee
	}
}

// New returns an empty cart.
func New(opts ...Option) *Cart {
	c := &Cart{shippingFlat: DefaultShippingFlat}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MergeKey decides whether two adds combine into one line.
func MergeKey(it domain.LineItem) string {
	size := catalog.NormalizeSize(it.Size)
	if size == "" {
		size = catalog.DefaultSize
	}
	if sku := strings.TrimSpace(it.SKU); sku != "" {
		return "SKU:" + sku + "|SIZE:" + size
	}

	price := it.Price
	if price == "" {
		price = it.UnitPrice
	}
	return strings.Join([]string{
		strings.TrimSpace(it.Title),
		strings.TrimSpace(it.Sleeve),
		strings.TrimSpace(it.Color),
		size,
		price,
		strings.TrimSpace(it.Img),
	}, "|")
}

// UnitPrice is the per-unit amount of a line, preferring the explicit unit
// price over the stored price. Anything unreadable counts as zero.
func UnitPrice(it domain.LineItem) decimal.Decimal {
	if strings.TrimSpace(it.UnitPrice) != "" {
		return pricing.Coerce(it.UnitPrice)
	}
	return pricing.Coerce(it.Price)
}

// LineTotal is unit price times quantity.
func LineTotal(it domain.LineItem) decimal.Decimal {
	return UnitPrice(it).Mul(decimal.NewFromInt(int64(atLeastOne(it.Qty))))
}

// AddOrMerge adds the item's quantity to the line with the same merge key,
// or appends it. It returns the index of the affected line.
func (c *Cart) AddOrMerge(it domain.LineItem) int {
	it.Qty = atLeastOne(it.Qty)
	key := MergeKey(it)
	for i := range c.items {
		if MergeKey(c.items[i]) == key {
			c.items[i].Qty = atLeastOne(c.items[i].Qty) + it.Qty
			return i
		}
	}
	c.items = append(c.items, it)
	return len(c.items) - 1
}

// Remove deletes the line at index; out-of-range indexes are ignored.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.items) {
		return false
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return true
}

// Increment raises a line's quantity by one. There is no upper bound.
func (c *Cart) Increment(index int) bool {
	if index < 0 || index >= len(c.items) {
		return false
	}
	c.items[index].Qty = atLeastOne(c.items[index].Qty) + 1
	return true
}

// Decrement lowers a line's quantity by one, stopping at 1. It never removes
// the line.
func (c *Cart) Decrement(index int) bool {
	if index < 0 || index >= len(c.items) {
		return false
	}
	c.items[index].Qty = atLeastOne(atLeastOne(c.items[index].Qty) - 1)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in cart order.
func (c *Cart) Items() []domain.LineItem {
	return append([]domain.LineItem(nil), c.items...)
}

// Len is the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Count is the total quantity across lines, shown on the cart badge.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += atLeastOne(it.Qty)
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

// Shipping is the flat fee, or zero for an empty cart.
func (c *Cart) Shipping() decimal.Decimal {
	if c.IsEmpty() {
		return decimal.Zero
	}
	return c.shippingFlat
}

func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.Shipping())
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
