package cart

import (
	"fmt"
	"strings"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/pricing"
)

// LineView is one rendered cart line.
type LineView struct {
	Index     int
	Title     string
	Img       string
	Meta      string
	SKU       string
	Size      string
	Qty       int
	UnitPrice string
	LineTotal string
}

// View is the render-ready projection of a cart, shared by the checkout
// summary and the drawer.
type View struct {
	Lines     []LineView
	Empty     bool
	Count     int
	ShowBadge bool
	BadgeText string
	Subtotal  string
	Shipping  string
	Total     string
}

// Project builds the view model of c. It does not modify the cart.
func Project(c *Cart) View {
	v := View{
		Empty:    c.IsEmpty(),
		Count:    c.Count(),
		Subtotal: pricing.Money(c.Subtotal()),
		Shipping: pricing.Money(c.Shipping()),
		Total:    pricing.Money(c.Total()),
	}
	v.ShowBadge = v.Count > 0
	v.BadgeText = fmt.Sprintf("%d", v.Count)

	v.Lines = make([]LineView, 0, c.Len())
	for i, it := range c.items {
		title := it.Title
		if title == "" {
			title = catalog.DefaultTitle
		}
		size := catalog.NormalizeSize(it.Size)
		v.Lines = append(v.Lines, LineView{
			Index:     i,
			Title:     title,
			Img:       it.Img,
			Meta:      lineMeta(it.Sleeve, it.Color, size, it.SKU),
			SKU:       it.SKU,
			Size:      size,
			Qty:       atLeastOne(it.Qty),
			UnitPrice: pricing.Money(UnitPrice(it)),
			LineTotal: pricing.Money(LineTotal(it)),
		})
	}
	return v
}

// lineMeta renders "Manga corta · Negro · Talla M · SKU BAS-..".
func lineMeta(sleeve, color, size, sku string) string {
	parts := []string{strings.TrimSpace(sleeve), strings.TrimSpace(color)}
	if size != "" {
		parts = append(parts, "Talla "+size)
	}
	if sku = strings.TrimSpace(sku); sku != "" {
		parts = append(parts, "SKU "+sku)
	}
	return strings.Join(parts, " · ")
}
