package features

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cucumber/godog"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/overlay"
	"github.com/harry1917/basalto-web/internal/storefront"
)

var colorCodes = map[string]string{
	"Negro":       "NGR",
	"Azul":        "AZL",
	"Blanco":      "BLN",
	"Verde musgo": "VMU",
	"Beige":       "BEI",
}

type backend struct {
	mu       sync.Mutex
	requests int
	status   int
	body     string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.URL.Path != orders.CreateOrderPath {
		http.NotFound(w, r)
		return
	}
	b.requests++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.status)
	_, _ = w.Write([]byte(b.body))
}

type pendingTab struct {
	navigated string
	closed    bool
}

func (t *pendingTab) Navigate(_ context.Context, url string) error {
	t.navigated = url
	return nil
}

func (t *pendingTab) Close() error {
	t.closed = true
	return nil
}

type window struct {
	pending *pendingTab
	opened  []string
	current string
}

func (w *window) OpenBlank(context.Context) storefront.PendingTab {
	w.pending = &pendingTab{}
	return w.pending
}

func (w *window) OpenNew(_ context.Context, url string) bool {
	w.opened = append(w.opened, url)
	return true
}

func (w *window) Navigate(_ context.Context, url string) error {
	w.current = url
	return nil
}

type checkoutTestContext struct {
	server  *httptest.Server
	backend *backend
	window  *window
	notices []string
	ctrl    *storefront.Controller
	err     error
}

func (c *checkoutTestContext) reset() {
	c.backend = &backend{status: http.StatusOK, body: `{"ok":true}`}
	c.server = httptest.NewServer(c.backend)
	c.window = &window{}
	c.notices = nil
	c.err = nil
	client := orders.NewClient(c.server.URL, nil)
	c.ctrl = storefront.New(client, c.window, storefront.NotifierFunc(func(msg string) {
		c.notices = append(c.notices, msg)
	}), nil)
}

func (c *checkoutTestContext) close() {
	if c.server != nil {
		c.server.Close()
		c.server = nil
	}
}

func (c *checkoutTestContext) theOrderBackendIsAvailable() error {
	return nil
}

func (c *checkoutTestContext) aCartWith(qty int, size, sleeve, color string) error {
	code, ok := colorCodes[color]
	if !ok {
		return fmt.Errorf("unknown color %q", color)
	}
	sl, price := "MC", "25"
	if strings.Contains(strings.ToLower(sleeve), "larga") {
		sl, price = "ML", "30"
	}
	skus := catalog.NewSKUMap()
	for _, s := range catalog.DefaultSizeLadder {
		skus.Set(s, fmt.Sprintf("BAS-CC-%s-%s-%s", sl, code, s))
	}
	raw, err := skus.MarshalJSON()
	if err != nil {
		return err
	}

	card := &catalog.Card{
		HasTrigger: true,
		Trigger: catalog.Trigger{
			Title:  "Camisa cuello chino",
			Sleeve: sleeve,
			Color:  color,
			Price:  price,
			SKUMap: string(raw),
		},
	}
	if err := c.ctrl.OpenProduct(card); err != nil {
		return err
	}
	c.ctrl.SelectSize(size)
	c.ctrl.SetQty(qty)
	if err := c.ctrl.AddToCart(); err != nil {
		return err
	}
	c.ctrl.CloseProduct()
	return nil
}

func (c *checkoutTestContext) theBackendAnswersWithPaymentLink(number, link string) error {
	c.backend.body = fmt.Sprintf(`{"ok":true,"order_number":%q,"payment_method":"card","payment_link":%q}`, number, link)
	return nil
}

func (c *checkoutTestContext) theBackendAnswersWithoutMessagingLink(number string) error {
	c.backend.body = fmt.Sprintf(`{"ok":true,"order_number":%q,"payment_method":"transfer"}`, number)
	return nil
}

func (c *checkoutTestContext) theBackendFails(status int, body string) error {
	c.backend.status = status
	c.backend.body = body
	return nil
}

func (c *checkoutTestContext) iSubmitTheCheckoutForm(name, phone, address, method string) error {
	c.ctrl.OpenCheckout()
	_, c.err = c.ctrl.Submit(context.Background(), storefront.CheckoutForm{
		FullName:      name,
		Phone:         phone,
		AddressLine1:  address,
		PaymentMethod: method,
	})
	return nil
}

func (c *checkoutTestContext) theShopperIsTold(msg string) error {
	for _, n := range c.notices {
		if n == msg {
			return nil
		}
	}
	return fmt.Errorf("expected notice %q, got %q", msg, c.notices)
}

func (c *checkoutTestContext) theBackendReceived(n int) error {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()
	if c.backend.requests != n {
		return fmt.Errorf("expected %d requests, got %d", n, c.backend.requests)
	}
	return nil
}

func (c *checkoutTestContext) thePendingTabWasSentTo(url string) error {
	if c.window.pending == nil {
		return fmt.Errorf("no pending tab was opened")
	}
	if c.window.pending.navigated != url {
		return fmt.Errorf("pending tab at %q, want %q", c.window.pending.navigated, url)
	}
	return nil
}

func (c *checkoutTestContext) thePendingTabWasClosed() error {
	if c.window.pending == nil || !c.window.pending.closed {
		return fmt.Errorf("pending tab was not closed")
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if n := len(c.ctrl.Items()); n != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", n)
	}
	return nil
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	if got := len(c.ctrl.Items()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutViewIs(state string) error {
	open := c.ctrl.Overlays().IsOpen(overlay.Checkout)
	if (state == "open") != open {
		return fmt.Errorf("checkout view open=%v, want %s", open, state)
	}
	return nil
}

func (c *checkoutTestContext) theTransferReferenceReads(ref string) error {
	if got := c.ctrl.Checkout().TransferRef; got != ref {
		return fmt.Errorf("transfer reference %q, want %q", got, ref)
	}
	return nil
}

func (c *checkoutTestContext) theCartTotals(subtotal, total string) error {
	v := c.ctrl.Summary()
	if v.Subtotal != subtotal || v.Total != total {
		return fmt.Errorf("subtotal %s total %s, want %s %s", v.Subtotal, v.Total, subtotal, total)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, nil
	})

	ctx.Step(`^the order backend is available$`, tc.theOrderBackendIsAvailable)
	ctx.Step(`^a cart with (\d+) "([^"]*)" of the "([^"]*)" "([^"]*)" shirt$`, tc.aCartWith)
	ctx.Step(`^the order backend answers with order "([^"]*)" and payment link "([^"]*)"$`, tc.theBackendAnswersWithPaymentLink)
	ctx.Step(`^the order backend answers with order "([^"]*)" and no messaging link$`, tc.theBackendAnswersWithoutMessagingLink)
	ctx.Step(`^the order backend fails with status (\d+) and body "([^"]*)"$`, tc.theBackendFails)
	ctx.Step(`^I submit the checkout form with name "([^"]*)", phone "([^"]*)" and address "([^"]*)" paying by "([^"]*)"$`, tc.iSubmitTheCheckoutForm)

	ctx.Step(`^the shopper is told "([^"]*)"$`, tc.theShopperIsTold)
	ctx.Step(`^the order backend received (\d+) requests?$`, tc.theBackendReceived)
	ctx.Step(`^the pending tab was sent to "([^"]*)"$`, tc.thePendingTabWasSentTo)
	ctx.Step(`^the pending tab was closed$`, tc.thePendingTabWasClosed)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the checkout view is (open|closed)$`, tc.theCheckoutViewIs)
	ctx.Step(`^the transfer reference reads "([^"]*)"$`, tc.theTransferReferenceReads)
	ctx.Step(`^the cart subtotal is "([^"]*)" and the total is "([^"]*)"$`, tc.theCartTotals)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
