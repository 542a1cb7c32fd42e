package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/pkg/errors"
)

const orderColumns = `id, order_number, status, payment_method, payment_link, country,
			full_name, phone, address_line1, address_line2, department, city, notes,
			subtotal, shipping, total, tracking_code, created_at, updated_at`

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys
const uniqueViolation = "23505"

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Place(ctx context.Context, order *domain.Order, items []*domain.OrderItem, decrements map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for sku, qty := range decrements {
		res, err := tx.ExecContext(ctx, `
			UPDATE variants
			SET inventory = inventory - $2, updated_at = $3
			WHERE sku = $1 AND active = true AND inventory >= $2
		`, sku, qty, now)
		if err != nil {
			r.logger.Error("Failed to take stock", zap.String("sku", sku), zap.Error(err))
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &errors.ErrConflict{Message: fmt.Sprintf("Sin stock para %s (requerido %d)", sku, qty)}
		}
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		order.ID,
		order.OrderNumber,
		order.Status,
		order.PaymentMethod,
		order.PaymentLink,
		order.Country,
		order.FullName,
		order.Phone,
		order.AddressLine1,
		order.AddressLine2,
		order.Department,
		order.City,
		order.Notes,
		order.Subtotal,
		order.Shipping,
		order.Total,
		order.TrackingCode,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &errors.ErrConflict{Message: "order number already used: " + order.OrderNumber}
		}
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	for i, item := range items {
		item.OrderID = order.ID
		if err := insertItem(ctx, tx, item, i, now); err != nil {
			r.logger.Error("Failed to create order item", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)`, number).Scan(&exists)
	return exists, err
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentLink,
		&o.Country,
		&o.FullName,
		&o.Phone,
		&o.AddressLine1,
		&o.AddressLine2,
		&o.Department,
		&o.City,
		&o.Notes,
		&o.Subtotal,
		&o.Shipping,
		&o.Total,
		&o.TrackingCode,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: number}
	}
	if err != nil {
		r.logger.Error("Failed to get order by number", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, link string, status domain.OrderStatus) error {
	return r.exec(ctx, id, `UPDATE orders SET payment_link = $2, status = $3, updated_at = $4 WHERE id = $1`,
		link, status, time.Now())
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, trackingCode *string) error {
	return r.exec(ctx, id, `
		UPDATE orders
		SET status = $2, tracking_code = COALESCE($3, tracking_code), updated_at = $4
		WHERE id = $1
	`, status, trackingCode, time.Now())
}

func (r *orderRepository) exec(ctx context.Context, id uuid.UUID, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		r.logger.Error("Failed to update order", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, f repository.OrderFilter) ([]*domain.Order, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(order_number ILIKE $%d OR full_name ILIKE $%d OR phone ILIKE $%d OR city ILIKE $%d OR department ILIKE $%d)",
			n, n, n, n, n))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders ` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		r.logger.Error("Failed to count orders by status", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int)
	for rows.Next() {
		var status domain.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
