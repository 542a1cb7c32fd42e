package postgres

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
)

// idempotencyKeyRepository remembers which order a storefront submission
// created, keyed by the client's Idempotency-Key header. Only successful
// creates are stored, so a submission whose payment link failed can be
// retried with the same key.
type idempotencyKeyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIdempotencyKeyRepository creates the idempotency_keys repository
func NewIdempotencyKeyRepository(db *sql.DB, logger *zap.Logger) *idempotencyKeyRepository {
	return &idempotencyKeyRepository{db: db, logger: logger}
}

// GetByKey returns nil, nil for a key never seen.
func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	k := domain.IdempotencyKey{Key: key}
	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, request_hash, created_at
		FROM idempotency_keys
		WHERE key = $1
	`, key).Scan(&k.OrderID, &k.RequestHash, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to look up idempotency key", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &k, nil
}

// Create stores the key. When two identical submissions race, the first
// insert wins and the second is a no-op; the loser's order stays in the
// table but replays resolve to the winner.
func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, order_id, request_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`, key.Key, key.OrderID, key.RequestHash)
	if err != nil {
		r.logger.Error("Failed to store idempotency key",
			zap.String("key", key.Key),
			zap.String("order_id", key.OrderID.String()),
			zap.Error(err),
		)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.logger.Info("Idempotency key already stored, keeping the first order",
			zap.String("key", key.Key),
			zap.String("order_id", key.OrderID.String()),
		)
	}
	return nil
}
