package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/repository/postgres"
	"github.com/harry1917/basalto-web/internal/service"
)

func main() {
	stockFlag := flag.Int("set-stock", -1, "Also reset every seeded variant to this inventory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgres.RunMigrations(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	created, updated, err := service.Seed(ctx, repos)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Catalog seeded: %d created, %d updated\n", created, updated)

	if *stockFlag >= 0 {
		for _, v := range service.SeedVariants() {
			if err := repos.Variant.SetInventory(ctx, v.SKU, *stockFlag); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to set stock for %s: %v\n", v.SKU, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Stock reset to %d\n", *stockFlag)
	}

	variants, err := repos.Variant.List(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list variants: %v\n", err)
		os.Exit(1)
	}
	for _, v := range variants {
		printVariant(v)
	}
}

func printVariant(v *domain.Variant) {
	marker := ""
	if v.IsLowStock() {
		marker = "  (low)"
	}
	fmt.Printf("  %-20s %-12s %-12s %-4s $%s  stock %d%s\n",
		v.SKU, v.Sleeve, v.Color, v.Size, v.Price.StringFixed(2), v.Inventory, marker)
}
