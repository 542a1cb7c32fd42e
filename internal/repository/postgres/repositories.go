package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Variant:        NewVariantRepository(db, logger),
		Order:          NewOrderRepository(db, logger),
		OrderItem:      NewOrderItemRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
		OrderEvent:     NewOrderEventRepository(db, logger),
	}
}
