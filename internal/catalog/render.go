package catalog

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harry1917/basalto-web/internal/pricing"
)

// Entry is one grouped product card as the catalog page renders it.
type Entry struct {
	Title   string
	Sleeve  string
	Color   string
	Fabric  string
	Img     string
	Price   decimal.Decimal
	Compare decimal.Decimal
	Kind    string
	SKUs    SKUMap
}

// SleeveTag is the filter value of a sleeve label ("Manga corta" is short).
func SleeveTag(sleeve string) string {
	s := strings.ToLower(strings.TrimSpace(sleeve))
	switch {
	case strings.Contains(s, "larga"):
		return "long"
	case strings.Contains(s, "corta"):
		return "short"
	default:
		return s
	}
}

// ColorTag is the filter value of a color label.
func ColorTag(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

type gridView struct {
	ID    string
	Tab   Tab
	Cards []cardView
}

type cardView struct {
	Entry
	SleeveTag  string
	ColorTag   string
	PriceText  string
	PriceLabel string
	CompareTxt string
	SKUMapJSON string
	SoldOut    bool
}

var listingTemplate = template.Must(template.New("listing").Parse(`<section class="catalog">
{{- range .}}
  <div class="catalog-grid" id="{{.ID}}" data-tab="{{.Tab}}">
  {{- range .Cards}}
    <article class="card{{if .SoldOut}} is-soldout{{end}}" data-sleeve="{{.SleeveTag}}" data-color="{{.ColorTag}}">
      <img src="{{.Img}}" alt="{{.Title}} {{.Color}}" loading="lazy">
      <h3 class="card-title">{{.Title}}</h3>
      <p class="card-meta">{{.Sleeve}} · {{.Color}}</p>
      <p class="card-price">{{.PriceLabel}}</p>
      <a href="#" class="btn js-open-modal"
         data-img="{{.Img}}"
         data-title="{{.Title}}"
         data-sleeve="{{.Sleeve}}"
         data-color="{{.Color}}"
         data-price="{{.PriceText}}"
         data-compare="{{.CompareTxt}}"
         data-fabric="{{.Fabric}}"
         data-kind="{{.Kind}}"
         data-sku-map="{{.SKUMapJSON}}">Ver</a>
    </article>
  {{- end}}
  </div>
{{- end}}
</section>
`))

// RenderListing writes the catalog grids, one per tab in page order. Tabs
// without entries still get an empty grid.
func RenderListing(w io.Writer, grids map[Tab][]Entry) error {
	views := make([]gridView, 0, len(Tabs))
	for _, tab := range Tabs {
		gv := gridView{ID: GridID(tab), Tab: tab}
		for _, e := range grids[tab] {
			raw, err := e.SKUs.MarshalJSON()
			if err != nil {
				return fmt.Errorf("failed to encode sku map for %s: %w", e.Title, err)
			}
			gv.Cards = append(gv.Cards, cardView{
				Entry:      e,
				SleeveTag:  SleeveTag(e.Sleeve),
				ColorTag:   ColorTag(e.Color),
				PriceText:  pricing.Format(e.Price),
				PriceLabel: pricing.Money(e.Price),
				CompareTxt: pricing.Format(e.Compare),
				SKUMapJSON: string(raw),
				SoldOut:    !e.SKUs.HasAnySKU(),
			})
		}
		views = append(views, gv)
	}
	if err := listingTemplate.Execute(w, views); err != nil {
		return fmt.Errorf("failed to render listing: %w", err)
	}
	return nil
}
