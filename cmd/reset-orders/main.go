// reset-orders deletes every sandbox order with its items, events and
// idempotency keys, and puts seed stock back.
// Use the same DB settings as cmd/sandbox (e.g. .env with SANDBOX_STORE=postgres).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/repository/postgres"
	"github.com/harry1917/basalto-web/internal/service"
)

func main() {
	keepStock := flag.Bool("keep-stock", false, "Leave variant inventory as it is")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Children first.
	tables := []string{
		"idempotency_keys",
		"order_events",
		"order_items",
		"orders",
	}
	for _, table := range tables {
		result, err := db.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			log.Fatalf("Failed to delete from %s: %v", table, err)
		}
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d row(s) from %s\n", rows, table)
	}

	if *keepStock {
		return
	}
	for _, v := range service.SeedVariants() {
		res, err := db.ExecContext(ctx, "UPDATE variants SET inventory = $1, updated_at = NOW() WHERE sku = $2", v.Inventory, v.SKU)
		if err != nil {
			log.Fatalf("Failed to restock %s: %v", v.SKU, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			fmt.Printf("Skipped %s (not seeded yet, run cmd/seed-catalog)\n", v.SKU)
		}
	}
	fmt.Println("Stock restored to seed levels.")
}
