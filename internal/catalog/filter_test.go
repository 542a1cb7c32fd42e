package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureListing = `
<html><body>
<div id="catalogGrid-men">
  <article class="card" data-sleeve="short" data-color="negro">
    <h3>Camisa cuello chino</h3><p>Manga corta · Negro</p>
    <a class="js-open-modal" data-title="Camisa cuello chino" data-price="25" data-sku-map='{"S":"BAS-CC-MC-NGR-S"}'>Ver</a>
  </article>
  <article class="card" data-sleeve="long" data-color="negro">
    <h3>Camisa cuello chino</h3><p>Manga larga · Negro</p>
  </article>
  <article class="card" data-sleeve="Short" data-color="Azul">
    <h3>Camisa   cuello chino</h3><p>Manga corta · Azul</p>
  </article>
</div>
<div id="catalogGrid-kids">
  <article class="card" data-sleeve="long" data-color="beige"><h3>Mini camisa</h3></article>
</div>
</body></html>`

func parseFixture(t *testing.T) *Listing {
	t.Helper()
	l, err := ParseListing(strings.NewReader(fixtureListing))
	require.NoError(t, err)
	return l
}

func visibleSleeves(res FilterResult) []string {
	var out []string
	for _, c := range res.Cards {
		if c.Visible {
			out = append(out, strings.ToLower(c.Card.Sleeve))
		}
	}
	return out
}

func TestParseListing(t *testing.T) {
	l := parseFixture(t)

	assert.True(t, l.HasTab(TabMen))
	assert.True(t, l.HasTab(TabKids))
	assert.False(t, l.HasTab(TabWomen))
	assert.Equal(t, 4, l.Len())

	c, ok := l.Card(TabMen, 0)
	require.True(t, ok)
	assert.True(t, c.HasTrigger)
	assert.Equal(t, "Camisa cuello chino", c.Trigger.Title)
	assert.Equal(t, `{"S":"BAS-CC-MC-NGR-S"}`, c.Trigger.SKUMap)
	assert.Equal(t, "Camisa cuello chino Manga corta · Negro Ver", c.Text)

	_, ok = l.Card(TabMen, 3)
	assert.False(t, ok)
}

func TestFilter_Defaults(t *testing.T) {
	f := NewFilter(parseFixture(t))

	res := f.Result()
	assert.Equal(t, TabMen, res.Tab)
	assert.Equal(t, 3, res.Shown)
	assert.Equal(t, "Mostrando 3 de 3", res.Counter)
}

func TestFilter_SleeveShort(t *testing.T) {
	f := NewFilter(parseFixture(t))

	res := f.SetSleeve("short")

	assert.Equal(t, []string{"short", "short"}, visibleSleeves(res))
	assert.Equal(t, "Mostrando 2 de 3", res.Counter)
}

func TestFilter_SwitchingTabsKeepsFilterValues(t *testing.T) {
	f := NewFilter(parseFixture(t))
	f.SetSleeve("short")

	res := f.SetTab(TabKids)

	assert.Equal(t, "short", f.State().Sleeve)
	assert.Equal(t, 0, res.Shown)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Mostrando 0 de 1", res.Counter)

	res = f.SetTab(TabMen)
	assert.Equal(t, 2, res.Shown)
}

func TestFilter_ColorAndQuery(t *testing.T) {
	f := NewFilter(parseFixture(t))

	res := f.SetColor("NEGRO")
	assert.Equal(t, 2, res.Shown)

	res = f.SetQuery("  LARGA ")
	assert.Equal(t, []string{"long"}, visibleSleeves(res))

	res = f.SetQuery("cuello chino")
	assert.Equal(t, 2, res.Shown)
}

func TestFilter_Clear(t *testing.T) {
	f := NewFilter(parseFixture(t))
	f.SetSleeve("long")
	f.SetColor("azul")
	f.SetQuery("zzz")

	res := f.Clear()

	assert.Equal(t, FilterState{Tab: TabMen, Sleeve: FilterAll, Color: FilterAll}, f.State())
	assert.Equal(t, 3, res.Shown)
}

func TestFilter_MissingGrid(t *testing.T) {
	f := NewFilter(parseFixture(t))

	res := f.SetTab(TabWomen)

	assert.Equal(t, 0, res.Total)
	assert.Equal(t, NoResults, res.Counter)
}

func TestRenderListing_RoundTrip(t *testing.T) {
	entries := []Entry{
		{
			Title:   "Camisa cuello chino",
			Sleeve:  "Manga larga",
			Color:   "Verde musgo",
			Fabric:  "Manta hindú",
			Img:     "images/catalogo/4.webp",
			Price:   decimal.NewFromInt(30),
			Compare: decimal.NewFromInt(35),
			SKUs:    NewSKUMap("S", "BAS-CC-ML-VMU-S", "M", ""),
		},
		{
			Title:  "Camisa cuello chino",
			Sleeve: "Manga corta",
			Color:  "Beige",
			Price:  decimal.NewFromInt(25),
			SKUs:   NewSKUMap("S", ""),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderListing(&buf, map[Tab][]Entry{TabMen: entries}))

	l, err := ParseListing(&buf)
	require.NoError(t, err)
	require.Len(t, l.Cards(TabMen), 2)
	assert.True(t, l.HasTab(TabKids))
	assert.Empty(t, l.Cards(TabKids))

	first := l.Cards(TabMen)[0]
	assert.Equal(t, "long", first.Sleeve)
	assert.Equal(t, "verde musgo", first.Color)
	assert.False(t, first.SoldOut)
	assert.Equal(t, "30.00", first.Trigger.Price)
	assert.Equal(t, "35.00", first.Trigger.Compare)

	p := NewProduct(first.Trigger, nil)
	assert.Equal(t, []string{"S", "M"}, p.SKUs.Sizes())
	assert.Equal(t, "BAS-CC-ML-VMU-S", p.SKUs.Lookup("S"))

	assert.True(t, l.Cards(TabMen)[1].SoldOut)

	res := NewFilter(l).SetSleeve("short")
	assert.Equal(t, 1, res.Shown)
}
