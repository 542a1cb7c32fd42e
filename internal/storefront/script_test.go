package storefront

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
)

func scriptListing(t *testing.T) *catalog.Listing {
	t.Helper()
	entries := []catalog.Entry{
		{
			Title: "Camisa cuello chino", Sleeve: "Manga larga", Color: "Azul", Fabric: "Manta hindú",
			Price: decimal.NewFromInt(30), Compare: decimal.NewFromInt(35),
			SKUs: catalog.NewSKUMap("S", "BAS-CC-ML-AZL-S", "M", "BAS-CC-ML-AZL-M", "L", "BAS-CC-ML-AZL-L"),
		},
		{
			Title: "Camisa cuello chino", Sleeve: "Manga corta", Color: "Negro", Fabric: "Manta hindú",
			Price: decimal.NewFromInt(25), Compare: decimal.NewFromInt(30),
			SKUs: catalog.NewSKUMap("M", "BAS-CC-MC-NGR-M"),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, catalog.RenderListing(&buf, map[catalog.Tab][]catalog.Entry{catalog.TabMen: entries}))
	l, err := catalog.ParseListing(&buf)
	require.NoError(t, err)
	return l
}

const transferScript = `
customer:
  full_name: Ana López
  phone: 7000-0000
  address_line1: Col. Escalón
  city: San Salvador
  payment_method: transfer
items:
  - tab: men
    sleeve: long
    color: azul
    size: L
    qty: 2
  - index: 1
`

func TestScript_Run(t *testing.T) {
	h := newHarness(t)
	ok := true
	h.creator.resp = &orders.CreateOrderResponse{
		OK:          &ok,
		OrderNumber: "BAS-20260101-4321",
		WhatsAppURL: "https://wa.me/50370000000?text=x",
	}

	script, err := LoadScript(strings.NewReader(transferScript))
	require.NoError(t, err)

	out, err := script.Run(context.Background(), h.ctrl, scriptListing(t))
	require.NoError(t, err)
	assert.Equal(t, "BAS-20260101-4321", out.OrderNumber)
	assert.Equal(t, RedirectNewTab, out.Redirect)

	require.Equal(t, 1, h.creator.callCount())
	req := h.creator.calls[0]
	assert.Equal(t, domain.PaymentMethodTransfer, req.PaymentMethod)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "BAS-CC-ML-AZL-L", req.Items[0].SKU)
	assert.Equal(t, 2, req.Items[0].Qty)
	assert.Equal(t, "BAS-CC-MC-NGR-M", req.Items[1].SKU)
	assert.Equal(t, 1, req.Items[1].Qty)
}

func TestScript_Errors(t *testing.T) {
	_, err := LoadScript(strings.NewReader("customer: {}\nunknown: 1\n"))
	assert.Error(t, err)

	h := newHarness(t)
	script, err := LoadScript(strings.NewReader("items:\n  - color: verde\n"))
	require.NoError(t, err)
	_, err = script.Run(context.Background(), h.ctrl, scriptListing(t))
	assert.ErrorContains(t, err, "item 1")
	assert.Equal(t, 0, h.creator.callCount())
}
