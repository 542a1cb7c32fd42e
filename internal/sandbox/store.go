package sandbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/repository/memory"
	"github.com/harry1917/basalto-web/internal/repository/postgres"
	"github.com/harry1917/basalto-web/internal/service"
)

// OpenStore builds the repositories selected by SANDBOX_STORE. The memory
// store starts from the seed catalog; postgres is migrated and seeded in
// place, keeping existing stock. The returned func releases the store.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Repositories, func() error, error) {
	switch cfg.Sandbox.Store {
	case "", "memory":
		logger.Info("Using in-memory store")
		return memory.NewRepositories(service.SeedVariants()), func() error { return nil }, nil

	case "postgres":
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		repos := postgres.NewRepositories(db, logger)
		created, updated, err := service.Seed(ctx, repos)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		logger.Info("Using postgres store",
			zap.String("database", cfg.Database.DBName),
			zap.Int("variants_created", created),
			zap.Int("variants_updated", updated),
		)
		return repos, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown sandbox store %q", cfg.Sandbox.Store)
	}
}
