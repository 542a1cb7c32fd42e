package catalog

import (
	"strings"

	"github.com/harry1917/basalto-web/internal/pricing"
	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

// AccessoryKicker labels the detail view of any non-shirt product.
const AccessoryKicker = "ACCESORIO"

// NeckPlaceholder fills the neck attribute until the markup carries one.
const NeckPlaceholder = "-"

// DetailView is what the product detail overlay shows.
type DetailView struct {
	Img     string
	ImgAlt  string
	Title   string
	Kicker  string
	Price   string
	Compare string
	Color   string
	Fabric  string

	ShowNeck bool
	Neck     string

	ShowSizes    bool
	SizesEnabled bool
	ShowSizeHint bool
	Sizes        []string
	Size         string

	Qty int
}

// SizeOptions lists the sizes a shirt's selector offers. It falls back to the
// default ladder so the selector is never empty.
func SizeOptions(m SKUMap) []string {
	if available := m.AvailableSizes(); len(available) > 0 {
		return available
	}
	return append([]string(nil), DefaultSizeLadder...)
}

// BuildDetail prepares the detail view of p. A product with no SKU at all is
// sold out and gets no view.
func BuildDetail(p Product) (DetailView, error) {
	if p.SoldOut() {
		return DetailView{}, &pkgerrors.ErrSoldOut{Title: p.Title}
	}

	v := DetailView{
		Img:     p.Img,
		ImgAlt:  strings.TrimSpace(p.Title + " " + p.Color),
		Title:   p.Title,
		Price:   pricing.Format(p.Price),
		Compare: p.Compare,
		Color:   p.Color,
		Fabric:  p.Fabric,
		Qty:     1,
	}
	if v.Compare == "" {
		v.Compare = "0"
	}

	if !p.IsShirt() {
		v.Kicker = AccessoryKicker
		return v, nil
	}

	sleeve := p.Sleeve
	if sleeve == "" {
		sleeve = "Manga"
	}
	v.Kicker = strings.ToUpper(sleeve)
	v.ShowNeck = true
	v.Neck = NeckPlaceholder
	v.ShowSizes = true
	v.SizesEnabled = true
	v.ShowSizeHint = true
	v.Sizes = SizeOptions(p.SKUs)
	v.Size = v.Sizes[0]
	return v, nil
}
