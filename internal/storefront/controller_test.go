package storefront

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/overlay"
	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

func TestOpenProduct_SoldOutCardStaysClosed(t *testing.T) {
	h := newHarness(t)
	card := shirtCard(`{"S":"","M":" ","L":""}`)

	err := h.ctrl.OpenProduct(card)

	var soldOut *pkgerrors.ErrSoldOut
	require.ErrorAs(t, err, &soldOut)
	assert.True(t, card.SoldOut)
	assert.False(t, h.ctrl.Overlays().IsOpen(overlay.ProductDetail))
	assert.Equal(t, []string{MsgSoldOut}, h.notices.all())
	_, ok := h.ctrl.Detail()
	assert.False(t, ok)
}

func TestOpenProduct_ClearsStaleSoldOutMark(t *testing.T) {
	h := newHarness(t)
	card := shirtCard(fullSizes)
	card.SoldOut = true

	require.NoError(t, h.ctrl.OpenProduct(card))

	assert.False(t, card.SoldOut)
	assert.True(t, h.ctrl.Overlays().IsOpen(overlay.ProductDetail))
	assert.True(t, h.ctrl.Overlays().ScrollLocked())
}

func TestOpenProduct_MalformedSKUMapIsSoldOut(t *testing.T) {
	h := newHarness(t)

	err := h.ctrl.OpenProduct(shirtCard(`{broken`))

	var soldOut *pkgerrors.ErrSoldOut
	assert.ErrorAs(t, err, &soldOut)
}

func TestDetailQuantity(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.OpenProduct(shirtCard(fullSizes)))

	v, ok := h.ctrl.Detail()
	require.True(t, ok)
	assert.Equal(t, []string{"S", "M", "L"}, v.Sizes)
	assert.Equal(t, 1, v.Qty)

	assert.Equal(t, 1, h.ctrl.AdjustQty(-3))
	assert.Equal(t, 3, h.ctrl.AdjustQty(2))
	assert.Equal(t, 1, h.ctrl.SetQty(0))
}

func TestAddToCart_MergesAndConfirms(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, WithClock(func() time.Time { return now }))
	require.NoError(t, h.ctrl.OpenProduct(shirtCard(fullSizes)))
	h.ctrl.SelectSize("l")
	h.ctrl.SetQty(2)

	assert.Equal(t, LabelAdd, h.ctrl.AddButtonLabel())
	require.NoError(t, h.ctrl.AddToCart())
	assert.Equal(t, LabelAdded, h.ctrl.AddButtonLabel())
	require.NoError(t, h.ctrl.AddToCart())

	items := h.ctrl.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "BAS-CC-MC-NGR-L", items[0].SKU)
	assert.Equal(t, 4, items[0].Qty)
	assert.Equal(t, "25.00", items[0].Price)
	assert.True(t, h.ctrl.GoCheckoutVisible())
	assert.Equal(t, "4", h.ctrl.Drawer().BadgeText)

	now = now.Add(time.Second)
	assert.Equal(t, LabelAdd, h.ctrl.AddButtonLabel())
}

func TestAddToCart_NoProductIsNoop(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.ctrl.AddToCart())
	require.NoError(t, h.ctrl.BuyNow())

	assert.Empty(t, h.ctrl.Items())
	assert.False(t, h.ctrl.GoCheckoutVisible())
}

func TestAddToCart_UnselectedSizeFallsBack(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.OpenProduct(shirtCard(`{"S":"","M":"","L":"BAS-L"}`)))

	require.NoError(t, h.ctrl.AddToCart())

	assert.Equal(t, "L", h.ctrl.Items()[0].Size)
}

func TestBuyNow(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.OpenProduct(shirtCard(fullSizes)))

	require.NoError(t, h.ctrl.BuyNow())

	assert.Len(t, h.ctrl.Items(), 1)
	assert.False(t, h.ctrl.Overlays().IsOpen(overlay.ProductDetail))
	assert.True(t, h.ctrl.Overlays().IsOpen(overlay.Checkout))
	_, ok := h.ctrl.Detail()
	assert.False(t, ok)
}

func TestGoCheckout_AddsOnlyIntoEmptyCart(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.OpenProduct(shirtCard(fullSizes)))
	require.NoError(t, h.ctrl.GoCheckout())
	assert.Len(t, h.ctrl.Items(), 1)

	require.NoError(t, h.ctrl.OpenProduct(shirtCard(`{"S":"OTHER-S"}`)))
	require.NoError(t, h.ctrl.GoCheckout())

	items := h.ctrl.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Qty)
	assert.True(t, h.ctrl.Overlays().IsOpen(overlay.Checkout))
}

func TestDrawer(t *testing.T) {
	h := newHarness(t)

	h.ctrl.OpenDrawer()
	assert.True(t, h.ctrl.Drawer().Open)
	assert.True(t, h.ctrl.Drawer().Empty)

	err := h.ctrl.DrawerCheckout()
	var validation *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, []string{MsgCartEmpty}, h.notices.all())
	assert.True(t, h.ctrl.Drawer().Open)

	h.withItem(t)
	h.ctrl.Increment(0)
	h.ctrl.Increment(0)
	h.ctrl.Decrement(0)
	assert.Equal(t, 2, h.ctrl.Items()[0].Qty)
	assert.Equal(t, "$50.00", h.ctrl.Drawer().Subtotal)
	assert.Equal(t, h.ctrl.Summary(), h.ctrl.Drawer().View)

	require.NoError(t, h.ctrl.DrawerCheckout())
	assert.False(t, h.ctrl.Drawer().Open)
	assert.True(t, h.ctrl.Checkout().Open)

	assert.True(t, h.ctrl.Remove(0))
	assert.False(t, h.ctrl.Remove(0))
	assert.Equal(t, "$0.00", h.ctrl.Summary().Shipping)
}

func TestEscapeClosesEverything(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.OpenProduct(shirtCard(fullSizes)))
	h.ctrl.OpenDrawer()

	closed := h.ctrl.Escape()

	assert.ElementsMatch(t, []overlay.ID{overlay.ProductDetail, overlay.Drawer}, closed)
	assert.False(t, h.ctrl.Overlays().ScrollLocked())
	_, ok := h.ctrl.Detail()
	assert.False(t, ok)
}

func TestPaymentMethodToggle(t *testing.T) {
	h := newHarness(t)
	h.ctrl.OpenCheckout()

	assert.Equal(t, domain.PaymentMethodCard, h.ctrl.Checkout().PaymentMethod)
	assert.False(t, h.ctrl.Checkout().TransferBoxVisible)

	h.ctrl.SetPaymentMethod(" Transfer ")
	v := h.ctrl.Checkout()
	assert.Equal(t, domain.PaymentMethodTransfer, v.PaymentMethod)
	assert.True(t, v.TransferBoxVisible)
	assert.Equal(t, TransferRefHint, v.TransferRef)
	assert.Equal(t, LabelSubmit, v.SubmitLabel)
}

func TestSubmit_EmptyCartMakesNoCall(t *testing.T) {
	h := newHarness(t)

	_, err := h.ctrl.Submit(context.Background(), validForm("card"))

	var validation *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, 0, h.creator.callCount())
	assert.Empty(t, h.window.blanks)
	assert.Equal(t, []string{MsgOrderEmpty}, h.notices.all())
}

func TestSubmit_MissingFieldsMakesNoCall(t *testing.T) {
	h := newHarness(t)
	h.withItem(t)

	_, err := h.ctrl.Submit(context.Background(), CheckoutForm{FullName: "Ana", Phone: "   "})

	var validation *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "phone")
	assert.Contains(t, validation.Fields, "address_line1")
	assert.NotContains(t, validation.Fields, "full_name")
	assert.Equal(t, 0, h.creator.callCount())
	assert.Equal(t, []string{MsgMissingFields}, h.notices.all())
	assert.Len(t, h.ctrl.Items(), 1)
}

func TestSubmit_CardSuccessNavigatesPendingTab(t *testing.T) {
	h := newHarness(t)
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-20260110-0001", PaymentLink: "https://pay.example/l/1"}
	h.withItem(t)
	h.ctrl.OpenCheckout()

	out, err := h.ctrl.Submit(context.Background(), validForm(""))

	require.NoError(t, err)
	assert.Equal(t, RedirectPendingTab, out.Redirect)
	assert.Equal(t, "https://pay.example/l/1", out.RedirectURL)
	assert.True(t, out.CartCleared)
	require.Len(t, h.window.blanks, 1)
	assert.Equal(t, []string{"https://pay.example/l/1"}, h.window.blanks[0].navigated)
	assert.Empty(t, h.window.navigated)
	assert.Empty(t, h.ctrl.Items())
	assert.False(t, h.ctrl.Checkout().Open)
	assert.Equal(t, LabelSubmit, h.ctrl.Checkout().SubmitLabel)
	assert.False(t, h.ctrl.Checkout().SubmitDisabled)
	assert.Empty(t, h.notices.all())

	req := h.creator.calls[0]
	assert.Equal(t, "El Salvador", req.Country)
	assert.Equal(t, "Ana López", req.FullName)
	assert.Equal(t, domain.PaymentMethodCard, req.PaymentMethod)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "25.00", req.Items[0].UnitPrice)
	assert.Equal(t, "S", req.Items[0].Size)
	assert.Equal(t, "key-1", h.creator.keys[0])
}

func TestSubmit_CardPopupBlockedUsesCurrentTab(t *testing.T) {
	h := newHarness(t)
	h.window.blockPopups = true
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-1", PaymentLink: "https://pay.example/l/2"}
	h.withItem(t)

	out, err := h.ctrl.Submit(context.Background(), validForm("card"))

	require.NoError(t, err)
	assert.Equal(t, RedirectCurrentTab, out.Redirect)
	assert.Equal(t, []string{"https://pay.example/l/2"}, h.window.navigated)
	assert.Empty(t, h.ctrl.Items())
}

func TestSubmit_CardWithoutLinkKeepsCart(t *testing.T) {
	h := newHarness(t)
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-20260110-0002"}
	h.withItem(t)
	h.ctrl.OpenCheckout()

	out, err := h.ctrl.Submit(context.Background(), validForm("card"))

	var partial *pkgerrors.ErrPartialSuccess
	require.ErrorAs(t, err, &partial)
	assert.True(t, IsPartialSuccess(err))
	assert.Equal(t, domain.PaymentMethodCard, partial.PaymentMethod)
	require.NotNil(t, out)
	assert.False(t, out.CartCleared)
	assert.True(t, h.window.blanks[0].closed)
	assert.Len(t, h.ctrl.Items(), 1)
	assert.True(t, h.ctrl.Checkout().Open)
	assert.Equal(t, []string{MsgCardNoLink}, h.notices.all())
	assert.Equal(t, LabelSubmit, h.ctrl.Checkout().SubmitLabel)
}

func TestSubmit_TransferSuccessOpensNewTab(t *testing.T) {
	h := newHarness(t)
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-3", WhatsAppURL: "https://wa.me/50370000000?text=hola"}
	h.withItem(t)
	h.ctrl.OpenCheckout()

	out, err := h.ctrl.Submit(context.Background(), validForm("transfer"))

	require.NoError(t, err)
	assert.Equal(t, RedirectNewTab, out.Redirect)
	assert.Empty(t, h.window.blanks)
	assert.Equal(t, []string{"https://wa.me/50370000000?text=hola"}, h.window.opened)
	assert.Empty(t, h.ctrl.Items())
	assert.False(t, h.ctrl.Checkout().Open)
}

func TestSubmit_TransferBlockedFallsBackToCurrentTab(t *testing.T) {
	h := newHarness(t)
	h.window.blockPopups = true
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-4", WhatsAppURL: "https://wa.me/1"}
	h.withItem(t)

	out, err := h.ctrl.Submit(context.Background(), validForm("transfer"))

	require.NoError(t, err)
	assert.Equal(t, RedirectCurrentTab, out.Redirect)
	assert.Equal(t, []string{"https://wa.me/1"}, h.window.navigated)
}

func TestSubmit_TransferWithoutLinkKeepsCartAndCheckout(t *testing.T) {
	h := newHarness(t)
	h.creator.resp = &orders.CreateOrderResponse{}
	h.withItem(t)
	h.ctrl.OpenCheckout()
	h.ctrl.SetPaymentMethod("transfer")

	_, err := h.ctrl.Submit(context.Background(), validForm(""))

	assert.True(t, IsPartialSuccess(err))
	assert.Len(t, h.ctrl.Items(), 1)
	assert.True(t, h.ctrl.Checkout().Open)
	assert.Equal(t, OrderNumberPlaceholder, h.ctrl.Checkout().TransferRef)
	assert.Equal(t, []string{MsgTransferNoLink}, h.notices.all())
}

func TestSubmit_OtherMethodClearsCartWithoutRedirect(t *testing.T) {
	h := newHarness(t)
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-6"}
	h.withItem(t)
	h.ctrl.OpenCheckout()

	out, err := h.ctrl.Submit(context.Background(), validForm("cash"))

	require.NoError(t, err)
	assert.Empty(t, out.RedirectURL)
	assert.True(t, out.CartCleared)
	assert.Empty(t, h.ctrl.Items())
	assert.False(t, h.ctrl.Checkout().Open)
	assert.Empty(t, h.window.blanks)
	assert.Empty(t, h.window.opened)
	assert.Equal(t, []string{MsgOrderCreated}, h.notices.all())
}

func TestSubmit_FailureLeavesCartAndClosesPendingTab(t *testing.T) {
	h := newHarness(t)
	h.creator.err = &pkgerrors.ErrRemote{Status: 400, Body: "SKU inválido"}
	h.withItem(t)
	h.ctrl.OpenCheckout()

	out, err := h.ctrl.Submit(context.Background(), validForm("card"))

	assert.Nil(t, out)
	var remote *pkgerrors.ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.True(t, h.window.blanks[0].closed)
	assert.Len(t, h.ctrl.Items(), 1)
	assert.True(t, h.ctrl.Checkout().Open)
	assert.Equal(t, []string{"No se pudo crear la orden: SKU inválido"}, h.notices.all())
	assert.Equal(t, LabelSubmit, h.ctrl.Checkout().SubmitLabel)
	assert.False(t, h.ctrl.Checkout().SubmitDisabled)
}

func TestSubmit_FailureMessages(t *testing.T) {
	assert.Equal(t, "No se pudo crear la orden: Error creando orden",
		failureMessage(&pkgerrors.ErrRemote{Status: 500}))
	assert.Equal(t, "No se pudo crear la orden: No se pudo crear la orden",
		failureMessage(&pkgerrors.ErrOrderRejected{}))
	assert.Equal(t, "No se pudo crear la orden: Talla inválida",
		failureMessage(&pkgerrors.ErrOrderRejected{Detail: "Talla inválida"}))
	assert.Equal(t, "No se pudo crear la orden: dial tcp: refused",
		failureMessage(errors.New("dial tcp: refused")))
}

func TestSubmit_SecondSubmitWhileInFlightIsRejected(t *testing.T) {
	h := newHarness(t)
	h.creator.started = make(chan struct{}, 1)
	h.creator.release = make(chan struct{})
	h.creator.resp = &orders.CreateOrderResponse{OrderNumber: "BAS-5", WhatsAppURL: "https://wa.me/2"}
	h.withItem(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Submit(context.Background(), validForm("transfer"))
		done <- err
	}()
	<-h.creator.started

	busy := h.ctrl.Checkout()
	assert.True(t, busy.SubmitDisabled)
	assert.Equal(t, LabelBusy, busy.SubmitLabel)

	// the rest of the page stays usable while the request runs
	h.ctrl.OpenDrawer()
	assert.True(t, h.ctrl.Drawer().Open)

	_, err := h.ctrl.Submit(context.Background(), validForm("transfer"))
	var conflict *pkgerrors.ErrConflict
	require.ErrorAs(t, err, &conflict)

	close(h.creator.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.creator.callCount())
	assert.Equal(t, LabelSubmit, h.ctrl.Checkout().SubmitLabel)
}

func TestSubmit_CancelledContextIsAFailure(t *testing.T) {
	h := newHarness(t)
	h.creator.release = make(chan struct{})
	h.withItem(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ctrl.Submit(ctx, validForm("card"))

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, h.ctrl.Items(), 1)
	assert.False(t, h.ctrl.Checkout().SubmitDisabled)
}

func TestSubmit_EachSubmissionGetsFreshKey(t *testing.T) {
	h := newHarness(t)
	h.creator.err = errors.New("boom")
	h.withItem(t)

	_, _ = h.ctrl.Submit(context.Background(), validForm("transfer"))
	_, _ = h.ctrl.Submit(context.Background(), validForm("transfer"))

	assert.Equal(t, []string{"key-1", "key-2"}, h.creator.keys)
}

func TestOutcomeString(t *testing.T) {
	o := &Outcome{OrderNumber: "BAS-1", PaymentMethod: domain.PaymentMethodCard, RedirectURL: "https://x"}
	assert.Equal(t, "order BAS-1 (card) -> https://x", o.String())
}
