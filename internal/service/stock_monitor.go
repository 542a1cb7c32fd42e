package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/repository"
)

// StockCheckInterval is how often the sandbox reports low stock.
const StockCheckInterval = 10 * time.Minute

var stockCheckMu sync.Mutex

// RunStockCheckOnce logs every variant at or below its low-stock threshold
// and returns how many there were.
func RunStockCheckOnce(ctx context.Context, repos *repository.Repositories, logger *zap.Logger) int {
	stockCheckMu.Lock()
	defer stockCheckMu.Unlock()

	low, err := repos.Variant.List(ctx, true)
	if err != nil {
		logger.Error("Stock check: failed to list variants", zap.Error(err))
		return 0
	}
	for _, v := range low {
		logger.Warn("Low stock",
			zap.String("sku", v.SKU),
			zap.Int("inventory", v.Inventory),
			zap.Int("threshold", v.LowStockThreshold),
		)
	}
	if len(low) == 0 {
		logger.Debug("Stock check: no low-stock variants")
	}
	return len(low)
}

// RunStockCheckLoop runs the check once, then every interval. Call from a goroutine.
func RunStockCheckLoop(ctx context.Context, repos *repository.Repositories, interval time.Duration, logger *zap.Logger) {
	RunStockCheckOnce(ctx, repos, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunStockCheckOnce(ctx, repos, logger)
		}
	}
}
