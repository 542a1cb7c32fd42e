// Package storefront drives the shopper's session: product detail, cart
// drawer, checkout form and order submission.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/cart"
	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/overlay"
	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

// DefaultCountry is the only country the storefront ships to.
const DefaultCountry = "El Salvador"

// addedFlash is how long the add button reads LabelAdded.
const addedFlash = 900 * time.Millisecond

// Controller owns one shopper's cart and overlays. All methods are safe for
// concurrent use; Submit releases the lock while the order request runs.
type Controller struct {
	mu sync.Mutex

	cart     *cart.Cart
	overlays *overlay.Manager

	current *catalog.Product
	detail  catalog.DetailView
	addedAt time.Time

	method      domain.PaymentMethod
	transferRef string
	submitting  bool
	submitLabel string

	orders   OrderCreator
	window   Window
	notifier Notifier
	logger   *zap.Logger

	country string
	newKey  func() string
	now     func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithCountry overrides the fixed destination country.
func WithCountry(country string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(country) != "" {
			c.country = strings.TrimSpace(country)
		}
	}
}

// WithShippingFlat overrides the flat delivery fee.
func WithShippingFlat(fee decimal.Decimal) Option {
	return func(c *Controller) {
		c.cart = cart.New(cart.WithShippingFlat(fee))
	}
}

// WithKeyFunc overrides how idempotency keys are minted.
func WithKeyFunc(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(c *Controller) {
		if fn != nil {
			c.now = fn
		}
	}
}

// New creates a controller with an empty cart and every overlay closed.
func New(creator OrderCreator, window Window, notifier Notifier, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	c := &Controller{
		cart:        cart.New(),
		overlays:    overlay.NewManager(logger),
		method:      domain.PaymentMethodCard,
		transferRef: TransferRefHint,
		submitLabel: LabelSubmit,
		orders:      creator,
		window:      window,
		notifier:    notifier,
		logger:      logger,
		country:     DefaultCountry,
		newKey:      uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Overlays exposes the overlay state for rendering.
func (c *Controller) Overlays() *overlay.Manager {
	return c.overlays
}

// OpenProduct shows the detail view for a listing card. A card whose SKU map
// has no SKU at all is marked sold out and the view stays closed.
func (c *Controller) OpenProduct(card *catalog.Card) error {
	if card == nil || !card.HasTrigger {
		return &pkgerrors.ErrNotFound{Resource: "product trigger", ID: "card"}
	}

	c.mu.Lock()
	p := catalog.NewProduct(card.Trigger, c.logger)
	card.SoldOut = p.SoldOut()
	view, err := catalog.BuildDetail(p)
	if err != nil {
		c.mu.Unlock()
		c.logger.Info("Product sold out", zap.String("title", p.Title))
		c.notifier.Notify(MsgSoldOut)
		return err
	}
	c.current = &p
	c.detail = view
	c.addedAt = time.Time{}
	c.mu.Unlock()

	c.overlays.Open(overlay.ProductDetail)
	return nil
}

// CloseProduct hides the detail view and drops the current product.
func (c *Controller) CloseProduct() {
	c.mu.Lock()
	c.current = nil
	c.detail = catalog.DetailView{}
	c.mu.Unlock()
	c.overlays.Close(overlay.ProductDetail)
}

// Detail returns the detail view of the current product.
func (c *Controller) Detail() (catalog.DetailView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return catalog.DetailView{}, false
	}
	v := c.detail
	v.Sizes = append([]string(nil), c.detail.Sizes...)
	return v, true
}

// AdjustQty moves the pending quantity by delta, never below 1.
func (c *Controller) AdjustQty(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.Qty = max(1, c.detail.Qty+delta)
	return c.detail.Qty
}

// SetQty sets the pending quantity, never below 1.
func (c *Controller) SetQty(qty int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.Qty = max(1, qty)
	return c.detail.Qty
}

// SelectSize picks a size in the detail view. Non-shirts ignore it.
func (c *Controller) SelectSize(size string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || !c.detail.SizesEnabled {
		return
	}
	c.detail.Size = catalog.NormalizeSize(size)
}

// AddButtonLabel is the add-to-cart caption, briefly confirming the last add.
func (c *Controller) AddButtonLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.addedAt.IsZero() && c.now().Sub(c.addedAt) < addedFlash {
		return LabelAdded
	}
	return LabelAdd
}

// buildCurrentLocked turns the current product into a cart line.
func (c *Controller) buildCurrentLocked() (domain.LineItem, error) {
	size := c.detail.Size
	if size == "" {
		size = catalog.DefaultSize
	}
	return catalog.BuildItem(*c.current, c.detail.Qty, size)
}

// AddToCart adds the current product with the pending quantity and size.
func (c *Controller) AddToCart() error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return nil
	}
	it, err := c.buildCurrentLocked()
	if err != nil {
		c.mu.Unlock()
		c.notifier.Notify(MsgUnavailable)
		return err
	}
	c.cart.AddOrMerge(it)
	c.addedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug("Added to cart", zap.String("sku", it.SKU), zap.String("size", it.Size), zap.Int("qty", it.Qty))
	return nil
}

// BuyNow adds the current product and goes straight to checkout.
func (c *Controller) BuyNow() error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return nil
	}
	it, err := c.buildCurrentLocked()
	if err != nil {
		c.mu.Unlock()
		c.notifier.Notify(MsgUnavailable)
		return err
	}
	c.cart.AddOrMerge(it)
	c.mu.Unlock()

	c.CloseProduct()
	c.OpenCheckout()
	return nil
}

// GoCheckout moves from the detail view to checkout. With an empty cart the
// current product is added first.
func (c *Controller) GoCheckout() error {
	c.mu.Lock()
	if c.cart.IsEmpty() && c.current != nil {
		it, err := c.buildCurrentLocked()
		if err != nil {
			c.mu.Unlock()
			c.notifier.Notify(MsgUnavailable)
			return err
		}
		c.cart.AddOrMerge(it)
	}
	c.mu.Unlock()

	c.CloseProduct()
	c.OpenCheckout()
	return nil
}

// GoCheckoutVisible reports whether the go-to-checkout control is shown.
func (c *Controller) GoCheckoutVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.cart.IsEmpty()
}

func (c *Controller) OpenDrawer() {
	c.overlays.Open(overlay.Drawer)
}

func (c *Controller) CloseDrawer() {
	c.overlays.Close(overlay.Drawer)
}

// DrawerCheckout moves from the drawer to checkout.
func (c *Controller) DrawerCheckout() error {
	c.mu.Lock()
	empty := c.cart.IsEmpty()
	c.mu.Unlock()
	if empty {
		c.notifier.Notify(MsgCartEmpty)
		return &pkgerrors.ErrValidation{Message: MsgCartEmpty}
	}
	c.CloseDrawer()
	c.OpenCheckout()
	return nil
}

// Increment raises the quantity of the line at index.
func (c *Controller) Increment(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Increment(index)
}

// Decrement lowers the quantity of the line at index, stopping at 1.
func (c *Controller) Decrement(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Decrement(index)
}

// Remove deletes the line at index.
func (c *Controller) Remove(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Remove(index)
}

// Escape closes every open overlay.
func (c *Controller) Escape() []overlay.ID {
	closed := c.overlays.Escape()
	for _, id := range closed {
		if id == overlay.ProductDetail {
			c.mu.Lock()
			c.current = nil
			c.detail = catalog.DetailView{}
			c.mu.Unlock()
		}
	}
	return closed
}

// OpenCheckout shows the checkout view, resetting the transfer reference hint.
func (c *Controller) OpenCheckout() {
	c.mu.Lock()
	if !c.method.IsValid() {
		c.method = domain.PaymentMethodCard
	}
	c.transferRef = TransferRefHint
	c.mu.Unlock()
	c.overlays.Open(overlay.Checkout)
}

func (c *Controller) CloseCheckout() {
	c.overlays.Close(overlay.Checkout)
}

// SetPaymentMethod records the chosen payment method.
func (c *Controller) SetPaymentMethod(raw string) domain.PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method = domain.ParsePaymentMethod(raw)
	c.transferRef = TransferRefHint
	return c.method
}

// CheckoutView is the non-cart state of the checkout overlay.
type CheckoutView struct {
	Open               bool
	PaymentMethod      domain.PaymentMethod
	TransferBoxVisible bool
	TransferRef        string
	SubmitLabel        string
	SubmitDisabled     bool
}

// Checkout returns the checkout overlay state.
func (c *Controller) Checkout() CheckoutView {
	open := c.overlays.IsOpen(overlay.Checkout)
	c.mu.Lock()
	defer c.mu.Unlock()
	return CheckoutView{
		Open:               open,
		PaymentMethod:      c.method,
		TransferBoxVisible: c.method == domain.PaymentMethodTransfer,
		TransferRef:        c.transferRef,
		SubmitLabel:        c.submitLabel,
		SubmitDisabled:     c.submitting,
	}
}

// Summary is the cart as the checkout summary panel renders it.
func (c *Controller) Summary() cart.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cart.Project(c.cart)
}

// DrawerView is the cart as the slide-out drawer renders it.
type DrawerView struct {
	cart.View
	Open bool
}

func (c *Controller) Drawer() DrawerView {
	open := c.overlays.IsOpen(overlay.Drawer)
	c.mu.Lock()
	defer c.mu.Unlock()
	return DrawerView{View: cart.Project(c.cart), Open: open}
}

// Items returns a copy of the cart lines.
func (c *Controller) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Items()
}

// Submit validates the form, creates the order and redirects the shopper.
// Validation failures make no network call. A submission already in flight
// makes a second one fail with *errors.ErrConflict. On success without a
// redirect target the order exists but the cart is kept, and the error is
// *errors.ErrPartialSuccess alongside a non-nil Outcome.
func (c *Controller) Submit(ctx context.Context, form CheckoutForm) (*Outcome, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, &pkgerrors.ErrConflict{Message: "checkout already in progress"}
	}
	if c.cart.IsEmpty() {
		c.mu.Unlock()
		c.notifier.Notify(MsgOrderEmpty)
		return nil, &pkgerrors.ErrValidation{Message: MsgOrderEmpty}
	}

	form = trimForm(form)
	if missing := missingFields(form); len(missing) > 0 {
		c.mu.Unlock()
		c.notifier.Notify(MsgMissingFields)
		return nil, &pkgerrors.ErrValidation{Message: MsgMissingFields, Fields: missing}
	}

	method := c.method
	if form.PaymentMethod != "" {
		method = domain.ParsePaymentMethod(form.PaymentMethod)
		c.method = method
	}
	if method == "" {
		method = domain.PaymentMethodCard
	}

	req := c.payloadLocked(form, method)
	key := c.newKey()
	c.submitting = true
	c.submitLabel = LabelBusy
	c.mu.Unlock()

	logger := c.logger.With(zap.String("idempotency_key", key), zap.String("payment_method", string(method)))

	var pending PendingTab
	if method == domain.PaymentMethodCard {
		pending = c.window.OpenBlank(ctx)
		if pending == nil {
			logger.Warn("Blank tab was blocked, payment will open in the current tab")
		}
	}

	logger.Info("Submitting order", zap.Int("items", len(req.Items)))
	resp, err := c.orders.CreateOrder(ctx, req, key)
	if err != nil {
		closePending(pending, logger)
		c.finish(nil, false, false)
		logger.Warn("Order submission failed", zap.Error(err))
		c.notifier.Notify(failureMessage(err))
		return nil, err
	}

	out := &Outcome{
		OrderNumber:   resp.OrderNumber,
		PaymentMethod: method,
		Response:      resp,
	}
	ref := resp.OrderNumber
	if ref == "" {
		ref = OrderNumberPlaceholder
	}

	switch method {
	case domain.PaymentMethodCard:
		if resp.PaymentLink == "" {
			closePending(pending, logger)
			c.finish(&ref, false, false)
			c.notifier.Notify(MsgCardNoLink)
			return out, &pkgerrors.ErrPartialSuccess{OrderNumber: resp.OrderNumber, PaymentMethod: method}
		}
		out.RedirectURL = resp.PaymentLink
		out.Redirect = RedirectCurrentTab
		if pending != nil {
			if err := pending.Navigate(ctx, resp.PaymentLink); err == nil {
				out.Redirect = RedirectPendingTab
			} else {
				logger.Warn("Pending tab navigation failed", zap.Error(err))
				closePending(pending, logger)
			}
		}
		if out.Redirect == RedirectCurrentTab {
			c.navigate(ctx, resp.PaymentLink, logger)
		}

	case domain.PaymentMethodTransfer:
		if resp.WhatsAppURL == "" {
			c.finish(&ref, false, false)
			c.notifier.Notify(MsgTransferNoLink)
			return out, &pkgerrors.ErrPartialSuccess{OrderNumber: resp.OrderNumber, PaymentMethod: method}
		}
		out.RedirectURL = resp.WhatsAppURL
		out.Redirect = RedirectNewTab
		if !c.window.OpenNew(ctx, resp.WhatsAppURL) {
			out.Redirect = RedirectCurrentTab
			c.navigate(ctx, resp.WhatsAppURL, logger)
		}

	default:
		c.notifier.Notify(MsgOrderCreated)
	}

	c.finish(&ref, true, true)
	out.CartCleared = true
	logger.Info("Order placed", zap.String("order_number", resp.OrderNumber), zap.String("redirect", string(out.Redirect)))
	return out, nil
}

// finish restores the submit control and applies the outcome to the cart.
func (c *Controller) finish(ref *string, clearCart, closeCheckout bool) {
	c.mu.Lock()
	if ref != nil {
		c.transferRef = *ref
	}
	if clearCart {
		c.cart.Clear()
	}
	c.submitting = false
	c.submitLabel = LabelSubmit
	c.mu.Unlock()

	if closeCheckout {
		c.CloseCheckout()
	}
}

func (c *Controller) navigate(ctx context.Context, url string, logger *zap.Logger) {
	if err := c.window.Navigate(ctx, url); err != nil {
		logger.Warn("Navigation failed", zap.String("url", url), zap.Error(err))
	}
}

func (c *Controller) payloadLocked(form CheckoutForm, method domain.PaymentMethod) *orders.CreateOrderRequest {
	items := c.cart.Items()
	req := &orders.CreateOrderRequest{
		Country:       c.country,
		FullName:      form.FullName,
		Phone:         form.Phone,
		AddressLine1:  form.AddressLine1,
		AddressLine2:  form.AddressLine2,
		Department:    form.Department,
		City:          form.City,
		Notes:         form.Notes,
		PaymentMethod: method,
		Items:         make([]orders.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		req.Items = append(req.Items, orders.WireItem(it))
	}
	return req
}

func closePending(tab PendingTab, logger *zap.Logger) {
	if tab == nil {
		return
	}
	if err := tab.Close(); err != nil {
		logger.Debug("Failed to close pending tab", zap.Error(err))
	}
}

func trimForm(f CheckoutForm) CheckoutForm {
	return CheckoutForm{
		FullName:      strings.TrimSpace(f.FullName),
		Phone:         strings.TrimSpace(f.Phone),
		AddressLine1:  strings.TrimSpace(f.AddressLine1),
		AddressLine2:  strings.TrimSpace(f.AddressLine2),
		Department:    strings.TrimSpace(f.Department),
		City:          strings.TrimSpace(f.City),
		Notes:         strings.TrimSpace(f.Notes),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
	}
}

func missingFields(f CheckoutForm) map[string]string {
	missing := make(map[string]string)
	if f.FullName == "" {
		missing["full_name"] = "required"
	}
	if f.Phone == "" {
		missing["phone"] = "required"
	}
	if f.AddressLine1 == "" {
		missing["address_line1"] = "required"
	}
	return missing
}

// IsPartialSuccess reports whether err means the order exists but no
// redirect happened.
func IsPartialSuccess(err error) bool {
	var partial *pkgerrors.ErrPartialSuccess
	return errors.As(err, &partial)
}

// String is a one-line description of the outcome for logs and the CLI.
func (o *Outcome) String() string {
	if o == nil {
		return ""
	}
	if o.RedirectURL == "" {
		return fmt.Sprintf("order %s (%s)", o.OrderNumber, o.PaymentMethod)
	}
	return fmt.Sprintf("order %s (%s) -> %s", o.OrderNumber, o.PaymentMethod, o.RedirectURL)
}
