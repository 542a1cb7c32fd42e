package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/pricing"
)

// DefaultTitle names a product whose markup carries no title.
const DefaultTitle = "Producto BASALTO"

// Kind is the category tag that drives size selection.
type Kind string

const (
	KindShirt     Kind = "shirt"
	KindAccessory Kind = "accessory"
)

// InferKind resolves the kind of a product. An explicit tag wins; otherwise a
// product with at most one available size, or with a one-size entry in stock,
// is an accessory.
func InferKind(explicit string, m SKUMap) Kind {
	if k := strings.ToLower(strings.TrimSpace(explicit)); k != "" {
		return Kind(k)
	}
	available := m.AvailableSizes()
	if len(available) <= 1 {
		return KindAccessory
	}
	for _, size := range available {
		if IsOneSize(size) {
			return KindAccessory
		}
	}
	return KindShirt
}

// Trigger holds the raw data attributes of a listing entry's open control.
type Trigger struct {
	Img     string
	Title   string
	Sleeve  string
	Color   string
	Price   string
	Compare string
	Fabric  string
	Kind    string
	SKUMap  string
}

// Product is the product currently shown in the detail view.
type Product struct {
	Img     string
	Title   string
	Sleeve  string
	Color   string
	Fabric  string
	Price   decimal.Decimal
	Compare string
	Kind    Kind
	SKUs    SKUMap
}

// NewProduct reads a listing trigger into a product, parsing its SKU map and
// resolving its kind.
func NewProduct(t Trigger, logger *zap.Logger) Product {
	skus := ParseSKUMap(t.SKUMap, logger)
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = DefaultTitle
	}
	return Product{
		Img:     strings.TrimSpace(t.Img),
		Title:   title,
		Sleeve:  strings.TrimSpace(t.Sleeve),
		Color:   strings.TrimSpace(t.Color),
		Fabric:  strings.TrimSpace(t.Fabric),
		Price:   pricing.Normalize(t.Price),
		Compare: strings.TrimSpace(t.Compare),
		Kind:    InferKind(t.Kind, skus),
		SKUs:    skus,
	}
}

// IsShirt reports whether the product offers a size choice.
func (p Product) IsShirt() bool {
	return p.Kind == "" || p.Kind == KindShirt
}

// SoldOut is true when no size has a SKU.
func (p Product) SoldOut() bool {
	return !p.SKUs.HasAnySKU()
}
