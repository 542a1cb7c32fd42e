package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one SKU/size/quantity entry of a shopper's cart
type LineItem struct {
	SKU     string
	Title   string
	Sleeve  string
	Color   string
	Fabric  string
	Img     string
	Price   string // normalized, two fraction digits
	Compare string
	// UnitPrice, when set, wins over Price for totals
	UnitPrice string
	Qty       int
	Size      string
	Kind      string
}

// Order represents a storefront order held by the sandbox backend
type Order struct {
	ID            uuid.UUID
	OrderNumber   string // BAS-YYYYMMDD-NNNN
	Status        OrderStatus
	PaymentMethod PaymentMethod
	PaymentLink   string
	Country       string
	FullName      string
	Phone         string
	AddressLine1  string
	AddressLine2  string
	Department    string
	City          string
	Notes         string
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	TrackingCode  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem represents an item in an order
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	VariantID *uuid.UUID
	SKU       string
	Title     string
	Sleeve    string
	Color     string
	Size      string
	Fabric    string
	Img       string
	UnitPrice decimal.Decimal
	Qty       int
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// Variant is one sellable SKU (product + sleeve + color + size)
type Variant struct {
	ID                uuid.UUID
	SKU               string
	Title             string
	Sleeve            string
	Color             string
	Size              string
	Fabric            string
	Img               string
	Price             decimal.Decimal
	CompareAt         decimal.Decimal
	Inventory         int
	LowStockThreshold int
	Active            bool
	UpdatedAt         time.Time
}

// IsLowStock reports whether inventory reached the alert threshold
func (v *Variant) IsLowStock() bool {
	return v.Inventory <= v.LowStockThreshold
}

// IdempotencyKey stores idempotency information
type IdempotencyKey struct {
	Key         string
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}
