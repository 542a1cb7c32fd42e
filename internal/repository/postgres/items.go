package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
)

type orderItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db *sql.DB, logger *zap.Logger) *orderItemRepository {
	return &orderItemRepository{
		db:     db,
		logger: logger,
	}
}

// insertItem runs inside the order transaction; position keeps cart order.
func insertItem(ctx context.Context, tx *sql.Tx, item *domain.OrderItem, position int, now time.Time) error {
	query := `
		INSERT INTO order_items (
			id, order_id, variant_id, sku, title, sleeve, color, size, fabric, img,
			unit_price, qty, line_total, position, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}

	var variantID uuid.NullUUID
	if item.VariantID != nil {
		variantID = uuid.NullUUID{UUID: *item.VariantID, Valid: true}
	}

	_, err := tx.ExecContext(ctx, query,
		item.ID,
		item.OrderID,
		variantID,
		item.SKU,
		item.Title,
		item.Sleeve,
		item.Color,
		item.Size,
		item.Fabric,
		item.Img,
		item.UnitPrice,
		item.Qty,
		item.LineTotal,
		position,
		item.CreatedAt,
	)
	return err
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, variant_id, sku, title, sleeve, color, size, fabric, img,
			unit_price, qty, line_total, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get order items by order ID", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var variantID uuid.NullUUID

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&variantID,
			&item.SKU,
			&item.Title,
			&item.Sleeve,
			&item.Color,
			&item.Size,
			&item.Fabric,
			&item.Img,
			&item.UnitPrice,
			&item.Qty,
			&item.LineTotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if variantID.Valid {
			id := variantID.UUID
			item.VariantID = &id
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}
