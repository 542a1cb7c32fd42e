package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
)

// orderEventRepository is the audit trail behind the dashboard's order
// detail: payment links issued, callbacks that marked an order paid and
// every status change made from the dashboard. Rows go away with their
// order (ON DELETE CASCADE), which is what cmd/reset-orders relies on.
type orderEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderEventRepository creates the order_events repository
func NewOrderEventRepository(db *sql.DB, logger *zap.Logger) *orderEventRepository {
	return &orderEventRepository{db: db, logger: logger}
}

// Create appends an event. created_at comes from the database clock unless
// the caller set one.
func (r *orderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	var data []byte
	if len(event.EventData) > 0 {
		var err error
		if data, err = json.Marshal(event.EventData); err != nil {
			return fmt.Errorf("encode %s event data: %w", event.EventType, err)
		}
	}

	var createdAt sql.NullTime
	if !event.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: event.CreatedAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO order_events (id, order_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		RETURNING created_at
	`, event.ID, event.OrderID, event.EventType, data, createdAt).Scan(&event.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to record order event",
			zap.String("order_id", event.OrderID.String()),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// GetByOrderID returns the order's events oldest first.
func (r *orderEventRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, event_data, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		r.logger.Error("Failed to load order events", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []*domain.OrderEvent
	for rows.Next() {
		e := &domain.OrderEvent{OrderID: orderID}
		var data []byte
		if err := rows.Scan(&e.ID, &e.EventType, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.EventData); err != nil {
				return nil, fmt.Errorf("decode %s event data: %w", e.EventType, err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
