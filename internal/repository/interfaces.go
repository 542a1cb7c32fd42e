package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/harry1917/basalto-web/internal/domain"
)

// VariantRepository defines catalog variant data access methods
type VariantRepository interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Variant, error)
	// GetActiveBySKUs returns the active variants among skus, keyed by SKU.
	GetActiveBySKUs(ctx context.Context, skus []string) (map[string]*domain.Variant, error)
	// ListActiveInStock returns active variants with inventory > 0 ordered by title, sleeve, color, size.
	ListActiveInStock(ctx context.Context) ([]*domain.Variant, error)
	List(ctx context.Context, lowStockOnly bool) ([]*domain.Variant, error)
	Upsert(ctx context.Context, v *domain.Variant) error
	SetInventory(ctx context.Context, sku string, inventory int) error
}

// OrderFilter narrows dashboard order listings
type OrderFilter struct {
	Query  string // matched against number, name, phone, city and department
	Status domain.OrderStatus
	Limit  int
	Offset int
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	// Place stores the order and its items and takes stock for every SKU in
	// decrements, all or nothing. It fails with *errors.ErrConflict when a
	// variant no longer has enough inventory.
	Place(ctx context.Context, order *domain.Order, items []*domain.OrderItem, decrements map[string]int) error
	NumberExists(ctx context.Context, number string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, link string, status domain.OrderStatus) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, trackingCode *string) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
}

// OrderItemRepository defines order item data access methods
type OrderItemRepository interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// OrderEventRepository defines order event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Variant        VariantRepository
	Order          OrderRepository
	OrderItem      OrderItemRepository
	IdempotencyKey IdempotencyKeyRepository
	OrderEvent     OrderEventRepository
}
