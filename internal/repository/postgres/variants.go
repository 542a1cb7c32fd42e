package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/pkg/errors"
)

const variantColumns = `id, sku, title, sleeve, color, size, fabric, img, price, compare_at,
			inventory, low_stock_threshold, active, updated_at`

type variantRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVariantRepository creates a new variant repository
func NewVariantRepository(db *sql.DB, logger *zap.Logger) *variantRepository {
	return &variantRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVariant(row rowScanner) (*domain.Variant, error) {
	var v domain.Variant
	err := row.Scan(
		&v.ID,
		&v.SKU,
		&v.Title,
		&v.Sleeve,
		&v.Color,
		&v.Size,
		&v.Fabric,
		&v.Img,
		&v.Price,
		&v.CompareAt,
		&v.Inventory,
		&v.LowStockThreshold,
		&v.Active,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *variantRepository) GetBySKU(ctx context.Context, sku string) (*domain.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM variants WHERE sku = $1`

	v, err := scanVariant(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "variant", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get variant by SKU", zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (r *variantRepository) GetActiveBySKUs(ctx context.Context, skus []string) (map[string]*domain.Variant, error) {
	out := make(map[string]*domain.Variant, len(skus))
	if len(skus) == 0 {
		return out, nil
	}
	query := `SELECT ` + variantColumns + ` FROM variants WHERE sku = ANY($1) AND active = true`

	variants, err := r.query(ctx, query, pq.Array(skus))
	if err != nil {
		r.logger.Error("Failed to get variants by SKUs", zap.Error(err))
		return nil, err
	}
	for _, v := range variants {
		out[v.SKU] = v
	}
	return out, nil
}

func (r *variantRepository) ListActiveInStock(ctx context.Context) ([]*domain.Variant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM variants
		WHERE active = true AND inventory > 0
		ORDER BY title, sleeve, color, sku
	`
	return r.query(ctx, query)
}

func (r *variantRepository) List(ctx context.Context, lowStockOnly bool) ([]*domain.Variant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM variants
		WHERE ($1 = false OR inventory <= low_stock_threshold)
		ORDER BY title, sleeve, color, sku
	`
	return r.query(ctx, query, lowStockOnly)
}

func (r *variantRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Variant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *variantRepository) Upsert(ctx context.Context, v *domain.Variant) error {
	query := `
		INSERT INTO variants (` + variantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (sku) DO UPDATE SET
			title = EXCLUDED.title,
			sleeve = EXCLUDED.sleeve,
			color = EXCLUDED.color,
			size = EXCLUDED.size,
			fabric = EXCLUDED.fabric,
			img = EXCLUDED.img,
			price = EXCLUDED.price,
			compare_at = EXCLUDED.compare_at,
			inventory = EXCLUDED.inventory,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		v.ID,
		v.SKU,
		v.Title,
		v.Sleeve,
		v.Color,
		v.Size,
		v.Fabric,
		v.Img,
		v.Price,
		v.CompareAt,
		v.Inventory,
		v.LowStockThreshold,
		v.Active,
		v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		r.logger.Error("Failed to upsert variant", zap.String("sku", v.SKU), zap.Error(err))
		return err
	}
	return nil
}

func (r *variantRepository) SetInventory(ctx context.Context, sku string, inventory int) error {
	query := `UPDATE variants SET inventory = $2, updated_at = $3 WHERE sku = $1`

	res, err := r.db.ExecContext(ctx, query, sku, inventory, time.Now())
	if err != nil {
		r.logger.Error("Failed to set variant inventory", zap.String("sku", sku), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "variant", ID: sku}
	}
	return nil
}
