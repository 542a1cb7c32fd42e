package orders

import (
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/pricing"
)

// CreateOrderPath is the order-creation endpoint, relative to the storefront origin.
const CreateOrderPath = "/api/orders/create/"

// CatalogPath serves the catalog listing markup.
const CatalogPath = "/catalogo/"

// CreateOrderRequest is the JSON body of an order submission
type CreateOrderRequest struct {
	Country       string               `json:"country"`
	FullName      string               `json:"full_name"`
	Phone         string               `json:"phone"`
	AddressLine1  string               `json:"address_line1"`
	AddressLine2  string               `json:"address_line2"`
	Department    string               `json:"department"`
	City          string               `json:"city"`
	Notes         string               `json:"notes"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Items         []OrderItem          `json:"items"`
}

// OrderItem is one cart line on the wire
type OrderItem struct {
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Sleeve    string `json:"sleeve"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Fabric    string `json:"fabric"`
	Img       string `json:"img"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unit_price"`
}

// CreateOrderResponse is the order endpoint's answer. OK is a pointer because
// only an explicit false marks a failure.
type CreateOrderResponse struct {
	OK             *bool                `json:"ok,omitempty"`
	Detail         string               `json:"detail,omitempty"`
	Error          string               `json:"error,omitempty"`
	OrderNumber    string               `json:"order_number,omitempty"`
	PaymentMethod  domain.PaymentMethod `json:"payment_method,omitempty"`
	Subtotal       string               `json:"subtotal,omitempty"`
	Shipping       string               `json:"shipping,omitempty"`
	Total          string               `json:"total,omitempty"`
	PaymentLink    string               `json:"payment_link,omitempty"`
	WhatsAppURL    string               `json:"whatsapp_url,omitempty"`
	PreorderNotice string               `json:"preorder_notice,omitempty"`
}

// Failed reports an explicit ok=false.
func (r *CreateOrderResponse) Failed() bool {
	return r.OK != nil && !*r.OK
}

// WireItem maps a cart line to its wire shape. The unit price is the stored
// price stripped to digits and periods.
func WireItem(it domain.LineItem) OrderItem {
	price := it.Price
	if price == "" {
		price = it.UnitPrice
	}
	if price == "" {
		price = "0"
	}
	qty := it.Qty
	if qty < 1 {
		qty = 1
	}
	return OrderItem{
		SKU:       it.SKU,
		Title:     it.Title,
		Sleeve:    it.Sleeve,
		Color:     it.Color,
		Size:      upper(it.Size),
		Fabric:    it.Fabric,
		Img:       it.Img,
		Qty:       qty,
		UnitPrice: pricing.CleanUnitPrice(price),
	}
}
