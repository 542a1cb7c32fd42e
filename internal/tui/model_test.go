package tui

import (
	"bytes"
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry1917/basalto-web/internal/browser"
	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/overlay"
	"github.com/harry1917/basalto-web/internal/service"
	"github.com/harry1917/basalto-web/internal/storefront"
)

type creatorFunc func(ctx context.Context, req *orders.CreateOrderRequest, key string) (*orders.CreateOrderResponse, error)

func (f creatorFunc) CreateOrder(ctx context.Context, req *orders.CreateOrderRequest, key string) (*orders.CreateOrderResponse, error) {
	return f(ctx, req, key)
}

func seedListing(t *testing.T) *catalog.Listing {
	t.Helper()
	var buf bytes.Buffer
	grids := map[catalog.Tab][]catalog.Entry{catalog.TabMen: service.GroupVariants(service.SeedVariants())}
	require.NoError(t, catalog.RenderListing(&buf, grids))
	listing, err := catalog.ParseListing(&buf)
	require.NoError(t, err)
	return listing
}

func newTestModel(t *testing.T, creator storefront.OrderCreator) (Model, *storefront.Controller, *browser.LogWindow) {
	t.Helper()
	notices := NewNotices()
	window := browser.NewLogWindow(false, nil)
	ctrl := storefront.New(creator, window, notices, nil)
	return New(context.Background(), ctrl, seedListing(t), notices), ctrl, window
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestModel_FilterBar(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	assert.Equal(t, "Mostrando 10 de 10", m.filter.Result().Counter)

	m = press(m, runes("s"))
	assert.Equal(t, "long", m.filter.State().Sleeve)
	assert.Equal(t, "Mostrando 5 de 10", m.filter.Result().Counter)

	m = press(m, runes("c"))
	assert.Equal(t, "Mostrando 1 de 10", m.filter.Result().Counter)

	m = press(m, runes("x"))
	assert.Equal(t, catalog.FilterAll, m.filter.State().Sleeve)
	assert.Equal(t, 10, m.filter.Result().Shown)

	m = press(m, runes("/"), runes("beige"), keyEnter)
	assert.False(t, m.searching)
	assert.Equal(t, 2, m.filter.Result().Shown)

	m = press(m, keyTab)
	assert.Equal(t, catalog.TabKids, m.filter.State().Tab)
	assert.Equal(t, catalog.NoResults, m.filter.Result().Counter)
}

func TestModel_DetailToCart(t *testing.T) {
	m, ctrl, _ := newTestModel(t, nil)

	m = press(m, keyDown, keyEnter)
	require.True(t, ctrl.Overlays().IsOpen(overlay.ProductDetail))

	m = press(m, runes("+"), runes("a"))
	require.Len(t, ctrl.Items(), 1)
	assert.Equal(t, 2, ctrl.Items()[0].Qty)
	assert.Contains(t, m.View(), storefront.LabelAdded)

	m = press(m, keyEsc)
	assert.False(t, ctrl.Overlays().IsOpen(overlay.ProductDetail))

	m = press(m, runes("b"))
	require.True(t, ctrl.Overlays().IsOpen(overlay.Drawer))
	m = press(m, runes("d"))
	assert.Empty(t, ctrl.Items())
	assert.Contains(t, m.View(), storefront.MsgCartEmpty)
}

func TestModel_CheckoutSubmit(t *testing.T) {
	var got *orders.CreateOrderRequest
	ok := true
	creator := creatorFunc(func(_ context.Context, req *orders.CreateOrderRequest, _ string) (*orders.CreateOrderResponse, error) {
		got = req
		return &orders.CreateOrderResponse{
			OK:            &ok,
			OrderNumber:   "BAS-20260101-1234",
			PaymentMethod: domain.PaymentMethodTransfer,
			WhatsAppURL:   "https://wa.me/50370000000?text=hola",
		}, nil
	})
	m, ctrl, window := newTestModel(t, creator)

	m = press(m, keyEnter, runes("n"))
	require.True(t, ctrl.Overlays().IsOpen(overlay.Checkout))
	assert.Equal(t, fieldFullName, m.focus)

	m = press(m, runes("Ana López"), keyTab, runes("7000-0000"), keyTab, runes("Col. Escalón"))
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, domain.PaymentMethodTransfer, ctrl.Checkout().PaymentMethod)

	msg := m.submitCmd(m.form())()
	next, _ := m.Update(msg)
	m = next.(Model)

	require.NotNil(t, got)
	assert.Equal(t, "Ana López", got.FullName)
	assert.Equal(t, "Col. Escalón", got.AddressLine1)
	assert.Equal(t, domain.PaymentMethodTransfer, got.PaymentMethod)
	assert.Contains(t, m.status, "BAS-20260101-1234")
	assert.Empty(t, ctrl.Items())
	assert.False(t, ctrl.Overlays().IsOpen(overlay.Checkout))
	assert.Empty(t, m.inputs[fieldFullName].Value())

	visits := window.Visits()
	require.Len(t, visits, 1)
	assert.Equal(t, "new_tab", visits[0].Target)
}

func TestModel_NoticesFeedStatus(t *testing.T) {
	m, ctrl, _ := newTestModel(t, nil)

	ctrl.OpenDrawer()
	m = press(m, keyEnter)
	assert.True(t, ctrl.Overlays().IsOpen(overlay.Drawer))

	msg := waitForNotice(m.notices)()
	next, _ := m.Update(msg)
	m = next.(Model)
	assert.Equal(t, storefront.MsgCartEmpty, m.status)
}

func TestModel_PartialSuccessKeepsNotice(t *testing.T) {
	ok := true
	creator := creatorFunc(func(context.Context, *orders.CreateOrderRequest, string) (*orders.CreateOrderResponse, error) {
		return &orders.CreateOrderResponse{
			OK:            &ok,
			OrderNumber:   "BAS-20260101-5555",
			PaymentMethod: domain.PaymentMethodTransfer,
		}, nil
	})
	m, ctrl, _ := newTestModel(t, creator)

	m = press(m, keyEnter, runes("n"))
	m = press(m, runes("Ana López"), keyTab, runes("7000-0000"), keyTab, runes("Col. Escalón"))
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlP})

	done := m.submitCmd(m.form())()

	// Notice first, then the finished submission.
	next, _ := m.Update(waitForNotice(m.notices)())
	m = next.(Model)
	next, _ = m.Update(done)
	m = next.(Model)

	assert.Contains(t, m.status, storefront.MsgTransferNoLink)
	assert.Contains(t, m.status, "BAS-20260101-5555")
	assert.False(t, m.failed)
	assert.Len(t, ctrl.Items(), 1)
	assert.True(t, ctrl.Overlays().IsOpen(overlay.Checkout))
}
