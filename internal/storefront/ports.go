package storefront

import (
	"context"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
)

// OrderCreator submits orders to the backend. *orders.Client implements it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *orders.CreateOrderRequest, idempotencyKey string) (*orders.CreateOrderResponse, error)
}

// PendingTab is a browser tab opened ahead of an asynchronous redirect.
type PendingTab interface {
	Navigate(ctx context.Context, url string) error
	Close() error
}

// Window performs browser navigation.
type Window interface {
	// OpenBlank opens an empty tab. It returns nil when the tab was blocked.
	OpenBlank(ctx context.Context) PendingTab
	// OpenNew opens url in a new tab and reports whether it was allowed.
	OpenNew(ctx context.Context, url string) bool
	// Navigate sends the current tab to url.
	Navigate(ctx context.Context, url string) error
}

// Notifier shows a message to the shopper.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// CheckoutForm is what the shopper typed into the checkout view.
type CheckoutForm struct {
	FullName      string `yaml:"full_name"`
	Phone         string `yaml:"phone"`
	AddressLine1  string `yaml:"address_line1"`
	AddressLine2  string `yaml:"address_line2"`
	Department    string `yaml:"department"`
	City          string `yaml:"city"`
	Notes         string `yaml:"notes"`
	PaymentMethod string `yaml:"payment_method"`
}

// RedirectTarget says where a successful order sent the shopper.
type RedirectTarget string

const (
	RedirectNone       RedirectTarget = ""
	RedirectPendingTab RedirectTarget = "pending_tab"
	RedirectNewTab     RedirectTarget = "new_tab"
	RedirectCurrentTab RedirectTarget = "current_tab"
)

// Outcome describes a submission that reached the backend and created an order.
type Outcome struct {
	OrderNumber   string
	PaymentMethod domain.PaymentMethod
	RedirectURL   string
	Redirect      RedirectTarget
	CartCleared   bool
	Response      *orders.CreateOrderResponse
}
