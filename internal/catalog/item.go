package catalog

import (
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/pricing"
	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

// ResolveSize picks the size a cart line is filed under. Non-shirts ignore
// the requested size and take their one-size entry (or first available
// size, or UNI). Shirts keep the requested size unless it has no SKU, in
// which case the first available size is used.
func ResolveSize(p Product, requested string) string {
	available := p.SKUs.AvailableSizes()

	size := NormalizeSize(requested)
	if size == "" {
		size = DefaultSize
	}

	if !p.IsShirt() {
		for _, s := range available {
			if IsOneSize(s) {
				return s
			}
		}
		if len(available) > 0 {
			return available[0]
		}
		return FallbackSize
	}

	if p.SKUs.Lookup(size) == "" && len(available) > 0 {
		return available[0]
	}
	return size
}

// BuildItem turns the displayed product into a cart line. It fails with
// *errors.ErrUnavailable instead of producing a line without a SKU.
func BuildItem(p Product, qty int, size string) (domain.LineItem, error) {
	resolved := ResolveSize(p, size)
	sku := p.SKUs.Lookup(resolved)
	if sku == "" {
		return domain.LineItem{}, &pkgerrors.ErrUnavailable{Title: p.Title, Size: resolved}
	}

	if qty < 1 {
		qty = 1
	}
	title := p.Title
	if title == "" {
		title = DefaultTitle
	}
	compare := p.Compare
	if compare == "" {
		compare = "0"
	}
	kind := p.Kind
	if kind == "" {
		kind = KindShirt
	}

	return domain.LineItem{
		SKU:     sku,
		Img:     p.Img,
		Title:   title,
		Sleeve:  p.Sleeve,
		Color:   p.Color,
		Fabric:  p.Fabric,
		Price:   pricing.Format(p.Price),
		Compare: compare,
		Qty:     qty,
		Size:    resolved,
		Kind:    string(kind),
	}, nil
}
