// Package memory keeps sandbox data in process memory. State is lost on
// restart; the catalog is re-seeded from the variants given to NewRepositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/pkg/errors"
)

type store struct {
	mu          sync.RWMutex
	variants    map[string]*domain.Variant
	orders      []*domain.Order
	items       map[uuid.UUID][]*domain.OrderItem
	idempotency map[string]*domain.IdempotencyKey
	events      map[uuid.UUID][]*domain.OrderEvent
}

// NewRepositories creates an in-memory repository set holding copies of seed.
func NewRepositories(seed []*domain.Variant) *repository.Repositories {
	s := &store{
		variants:    make(map[string]*domain.Variant, len(seed)),
		items:       make(map[uuid.UUID][]*domain.OrderItem),
		idempotency: make(map[string]*domain.IdempotencyKey),
		events:      make(map[uuid.UUID][]*domain.OrderEvent),
	}
	for _, v := range seed {
		cp := *v
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		s.variants[cp.SKU] = &cp
	}
	return &repository.Repositories{
		Variant:        &variantRepository{s},
		Order:          &orderRepository{s},
		OrderItem:      &orderItemRepository{s},
		IdempotencyKey: &idempotencyKeyRepository{s},
		OrderEvent:     &orderEventRepository{s},
	}
}

type variantRepository struct{ s *store }

func (r *variantRepository) GetBySKU(_ context.Context, sku string) (*domain.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.variants[sku]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "variant", ID: sku}
	}
	cp := *v
	return &cp, nil
}

func (r *variantRepository) GetActiveBySKUs(_ context.Context, skus []string) (map[string]*domain.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*domain.Variant, len(skus))
	for _, sku := range skus {
		if v, ok := r.s.variants[sku]; ok && v.Active {
			cp := *v
			out[sku] = &cp
		}
	}
	return out, nil
}

func (r *variantRepository) ListActiveInStock(_ context.Context) ([]*domain.Variant, error) {
	return r.collect(func(v *domain.Variant) bool { return v.Active && v.Inventory > 0 }), nil
}

func (r *variantRepository) List(_ context.Context, lowStockOnly bool) ([]*domain.Variant, error) {
	return r.collect(func(v *domain.Variant) bool { return !lowStockOnly || v.IsLowStock() }), nil
}

func (r *variantRepository) collect(keep func(*domain.Variant) bool) []*domain.Variant {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Variant
	for _, v := range r.s.variants {
		if keep(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Sleeve != b.Sleeve {
			return a.Sleeve < b.Sleeve
		}
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		return a.SKU < b.SKU
	})
	return out
}

func (r *variantRepository) Upsert(_ context.Context, v *domain.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *v
	if existing, ok := r.s.variants[v.SKU]; ok {
		cp.ID = existing.ID
	} else if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.UpdatedAt = time.Now()
	r.s.variants[v.SKU] = &cp
	v.ID = cp.ID
	return nil
}

func (r *variantRepository) SetInventory(_ context.Context, sku string, inventory int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[sku]
	if !ok {
		return &errors.ErrNotFound{Resource: "variant", ID: sku}
	}
	v.Inventory = inventory
	v.UpdatedAt = time.Now()
	return nil
}

type orderRepository struct{ s *store }

func (r *orderRepository) Place(_ context.Context, order *domain.Order, items []*domain.OrderItem, decrements map[string]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for sku, qty := range decrements {
		v, ok := r.s.variants[sku]
		if !ok || !v.Active {
			return &errors.ErrNotFound{Resource: "variant", ID: sku}
		}
		if v.Inventory < qty {
			return &errors.ErrConflict{Message: fmt.Sprintf("Sin stock para %s (stock %d, requerido %d)", sku, v.Inventory, qty)}
		}
	}
	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return &errors.ErrConflict{Message: "order number already used: " + order.OrderNumber}
		}
	}

	now := time.Now()
	for sku, qty := range decrements {
		v := r.s.variants[sku]
		v.Inventory -= qty
		v.UpdatedAt = now
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	cp := *order
	r.s.orders = append(r.s.orders, &cp)

	stored := make([]*domain.OrderItem, 0, len(items))
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.OrderID = order.ID
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
		ic := *it
		stored = append(stored, &ic)
	}
	r.s.items[order.ID] = stored
	return nil
}

func (r *orderRepository) NumberExists(_ context.Context, number string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *orderRepository) find(match func(*domain.Order) bool) *domain.Order {
	for _, o := range r.s.orders {
		if match(o) {
			return o
		}
	}
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o := r.find(func(o *domain.Order) bool { return o.ID == id })
	if o == nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o := r.find(func(o *domain.Order) bool { return o.OrderNumber == number })
	if o == nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: number}
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepository) UpdatePayment(_ context.Context, id uuid.UUID, link string, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o := r.find(func(o *domain.Order) bool { return o.ID == id })
	if o == nil {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o.PaymentLink = link
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus, trackingCode *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o := r.find(func(o *domain.Order) bool { return o.ID == id })
	if o == nil {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o.Status = status
	if trackingCode != nil {
		o.TrackingCode = *trackingCode
	}
	o.UpdatedAt = time.Now()
	return nil
}

func (r *orderRepository) List(_ context.Context, f repository.OrderFilter) ([]*domain.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	var matched []*domain.Order
	// Newest first.
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		o := r.s.orders[i]
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if q != "" && !orderMatches(o, q) {
			continue
		}
		cp := *o
		matched = append(matched, &cp)
	}

	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= total {
			return nil, total, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func orderMatches(o *domain.Order, q string) bool {
	for _, field := range []string{o.OrderNumber, o.FullName, o.Phone, o.City, o.Department} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (r *orderRepository) CountByStatus(_ context.Context) (map[domain.OrderStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[domain.OrderStatus]int)
	for _, o := range r.s.orders {
		counts[o.Status]++
	}
	return counts, nil
}

type orderItemRepository struct{ s *store }

func (r *orderItemRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stored := r.s.items[orderID]
	out := make([]*domain.OrderItem, 0, len(stored))
	for _, it := range stored {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

type idempotencyKeyRepository struct{ s *store }

func (r *idempotencyKeyRepository) GetByKey(_ context.Context, key string) (*domain.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	k, ok := r.s.idempotency[key]
	if !ok {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *idempotencyKeyRepository) Create(_ context.Context, key *domain.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.idempotency[key.Key]; ok {
		return nil
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	cp := *key
	r.s.idempotency[key.Key] = &cp
	return nil
}

type orderEventRepository struct{ s *store }

func (r *orderEventRepository) Create(_ context.Context, event *domain.OrderEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	cp := *event
	r.s.events[event.OrderID] = append(r.s.events[event.OrderID], &cp)
	return nil
}

func (r *orderEventRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]*domain.OrderEvent(nil), r.s.events[orderID]...), nil
}
