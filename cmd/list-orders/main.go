package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/repository/postgres"
)

func main() {
	queryFlag := flag.String("q", "", "Match order number, name, phone, city or department")
	statusFlag := flag.String("status", "", "Only orders in this status")
	limitFlag := flag.Int("limit", 100, "Maximum orders to print")
	flag.Parse()

	status := domain.OrderStatus(*statusFlag)
	if status != "" && !status.IsValid() {
		fmt.Fprintf(os.Stderr, "Unknown status %q\n", *statusFlag)
		os.Exit(1)
	}

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

	repos := postgres.NewRepositories(db, logger)
	ctx := context.Background()

	orders, total, err := repos.Order.List(ctx, repository.OrderFilter{
		Query:  *queryFlag,
		Status: status,
		Limit:  *limitFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Orders (%d of %d):\n", len(orders), total)
	for i, o := range orders {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  Number: %s\n", o.OrderNumber)
		fmt.Printf("  Status: %s\n", o.Status)
		fmt.Printf("  Payment: %s\n", o.PaymentMethod)
		fmt.Printf("  Customer: %s (%s)\n", o.FullName, o.Phone)
		fmt.Printf("  Ship to: %s, %s, %s\n", o.AddressLine1, o.City, o.Department)
		fmt.Printf("  Total: $%s\n", o.Total.StringFixed(2))
		if o.TrackingCode != "" {
			fmt.Printf("  Tracking: %s\n", o.TrackingCode)
		}
		fmt.Printf("  Created: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))

		items, err := repos.OrderItem.GetByOrderID(ctx, o.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Failed to load items: %v\n", err)
			continue
		}
		for _, it := range items {
			fmt.Printf("    %d x %s %s %s (%s) $%s\n", it.Qty, it.Title, it.Sleeve, it.Color, it.Size, it.LineTotal.StringFixed(2))
		}
	}

	counts, err := repos.Order.CountByStatus(ctx)
	if err == nil && len(counts) > 0 {
		fmt.Println("By status:")
		for s, n := range counts {
			fmt.Printf("  %s: %d\n", s, n)
		}
	}
}
