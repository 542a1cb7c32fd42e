package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry1917/basalto-web/internal/domain"
)

func item(sku, size, price string, qty int) domain.LineItem {
	return domain.LineItem{
		SKU:    sku,
		Title:  "Camisa cuello chino",
		Sleeve: "Manga corta",
		Color:  "Negro",
		Price:  price,
		Qty:    qty,
		Size:   size,
		Kind:   "shirt",
	}
}

func TestAddOrMerge_SameSKUAndSizeMerges(t *testing.T) {
	c := New()

	c.AddOrMerge(item("BAS-CC-MC-NGR-M", "M", "25.00", 1))
	idx := c.AddOrMerge(item("BAS-CC-MC-NGR-M", "m", "25.00", 2))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 0, idx)
	assert.Equal(t, 3, c.Items()[0].Qty)
}

func TestAddOrMerge_DifferentSizesStaySeparate(t *testing.T) {
	c := New()

	c.AddOrMerge(item("BAS-CC", "M", "25.00", 1))
	c.AddOrMerge(item("BAS-CC", "L", "25.00", 1))

	assert.Equal(t, 2, c.Len())
}

func TestAddOrMerge_CoercesQuantity(t *testing.T) {
	c := New()

	c.AddOrMerge(item("A", "M", "1.00", 0))
	c.AddOrMerge(item("A", "M", "1.00", -4))

	assert.Equal(t, 2, c.Items()[0].Qty)
}

func TestMergeKey(t *testing.T) {
	assert.Equal(t, "SKU:A|SIZE:M", MergeKey(domain.LineItem{SKU: " A "}))
	assert.Equal(t, "SKU:A|SIZE:XL", MergeKey(domain.LineItem{SKU: "A", Size: "xl"}))
	assert.Equal(t,
		"Gorra||Negro|M|12.00|img.webp",
		MergeKey(domain.LineItem{Title: " Gorra ", Color: "Negro", Price: "12.00", Img: "img.webp"}))
	assert.Equal(t,
		"Gorra|||M|9.50|",
		MergeKey(domain.LineItem{Title: "Gorra", UnitPrice: "9.50"}))
}

func TestRemove(t *testing.T) {
	c := New()
	c.AddOrMerge(item("A", "M", "10.00", 1))

	assert.False(t, c.Remove(5))
	assert.False(t, c.Remove(-1))
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Remove(0))
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Shipping().IsZero())
	assert.True(t, c.Total().IsZero())
}

func TestIncrementDecrement(t *testing.T) {
	c := New()
	c.AddOrMerge(item("A", "M", "10.00", 1))

	assert.True(t, c.Decrement(0))
	assert.True(t, c.Decrement(0))
	assert.Equal(t, 1, c.Items()[0].Qty)
	assert.Equal(t, 1, c.Len())

	for i := 0; i < 500; i++ {
		c.Increment(0)
	}
	assert.Equal(t, 501, c.Items()[0].Qty)

	assert.False(t, c.Increment(1))
	assert.False(t, c.Decrement(1))
}

func TestTotals(t *testing.T) {
	c := New()
	c.AddOrMerge(item("A", "M", "10.00", 2))
	c.AddOrMerge(item("B", "M", "5.50", 1))

	assert.Equal(t, "25.50", c.Subtotal().StringFixed(2))
	assert.Equal(t, "3.00", c.Shipping().StringFixed(2))
	assert.Equal(t, "28.50", c.Total().StringFixed(2))
	assert.Equal(t, 3, c.Count())
}

func TestTotals_UnitPriceWinsAndGarbageIsZero(t *testing.T) {
	c := New()
	withUnit := item("A", "M", "10.00", 1)
	withUnit.UnitPrice = "8.00"
	c.AddOrMerge(withUnit)
	c.AddOrMerge(item("B", "M", "abc", 3))

	assert.Equal(t, "8.00", c.Subtotal().StringFixed(2))
}

func TestWithShippingFlat(t *testing.T) {
	c := New(WithShippingFlat(decimal.RequireFromString("4.25")))
	assert.True(t, c.Shipping().IsZero())

	c.AddOrMerge(item("A", "M", "1.00", 1))
	assert.Equal(t, "4.25", c.Shipping().StringFixed(2))
}

func TestClear(t *testing.T) {
	c := New()
	c.AddOrMerge(item("A", "M", "1.00", 1))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Count())
}

func TestItemsIsACopy(t *testing.T) {
	c := New()
	c.AddOrMerge(item("A", "M", "1.00", 1))

	items := c.Items()
	items[0].Qty = 99

	assert.Equal(t, 1, c.Items()[0].Qty)
}

func TestProject(t *testing.T) {
	c := New()
	c.AddOrMerge(item("BAS-CC-MC-NGR-M", "M", "10.00", 2))
	c.AddOrMerge(domain.LineItem{Price: "5.50", Qty: 1})

	v := Project(c)

	require.Len(t, v.Lines, 2)
	assert.False(t, v.Empty)
	assert.True(t, v.ShowBadge)
	assert.Equal(t, "3", v.BadgeText)
	assert.Equal(t, "$25.50", v.Subtotal)
	assert.Equal(t, "$3.00", v.Shipping)
	assert.Equal(t, "$28.50", v.Total)

	first := v.Lines[0]
	assert.Equal(t, "Manga corta · Negro · Talla M · SKU BAS-CC-MC-NGR-M", first.Meta)
	assert.Equal(t, "$20.00", first.LineTotal)
	assert.Equal(t, "$10.00", first.UnitPrice)

	assert.Equal(t, "Producto BASALTO", v.Lines[1].Title)
}

func TestProject_Empty(t *testing.T) {
	v := Project(New())

	assert.True(t, v.Empty)
	assert.False(t, v.ShowBadge)
	assert.Empty(t, v.Lines)
	assert.Equal(t, "$0.00", v.Total)
}
