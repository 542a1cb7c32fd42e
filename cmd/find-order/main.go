package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-order/main.go <order_number>")
		fmt.Println("Example: go run cmd/find-order/main.go BAS-20260502-4821")
		os.Exit(1)
	}

	number := strings.TrimSpace(os.Args[1])

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

	fmt.Printf("Searching for order %s\n\n", number)

	// People paste numbers lowercased or without the shop prefix.
	variations := []string{number, strings.ToUpper(number)}
	if !strings.HasPrefix(strings.ToUpper(number), "BAS-") {
		variations = append(variations, "BAS-"+strings.ToUpper(number))
	}

	for _, v := range variations {
		order, err := repos.Order.GetByNumber(ctx, v)
		if err != nil {
			continue
		}

		fmt.Printf("Order %s\n", order.OrderNumber)
		fmt.Printf("  ID: %s\n", order.ID)
		fmt.Printf("  Status: %s\n", order.Status)
		fmt.Printf("  Payment: %s\n", order.PaymentMethod)
		if order.PaymentLink != "" {
			fmt.Printf("  Payment link: %s\n", order.PaymentLink)
		}
		fmt.Printf("  Customer: %s (%s)\n", order.FullName, order.Phone)
		fmt.Printf("  Ship to: %s, %s, %s\n", order.AddressLine1, order.City, order.Department)
		if order.Notes != "" {
			fmt.Printf("  Notes: %s\n", order.Notes)
		}
		fmt.Printf("  Total: $%s\n", order.Total.StringFixed(2))
		fmt.Printf("  Created: %s\n", order.CreatedAt.Format("2006-01-02 15:04"))

		items, err := repos.OrderItem.GetByOrderID(ctx, order.ID)
		if err == nil {
			fmt.Println("  Items:")
			for _, it := range items {
				fmt.Printf("    %d x %s [%s] $%s\n", it.Qty, it.Title, it.SKU, it.LineTotal.StringFixed(2))
			}
		}

		events, err := repos.OrderEvent.GetByOrderID(ctx, order.ID)
		if err == nil && len(events) > 0 {
			fmt.Println("  Events:")
			for _, e := range events {
				fmt.Printf("    %s  %s %v\n", e.CreatedAt.Format("2006-01-02 15:04"), e.EventType, e.EventData)
			}
		}
		return
	}

	fmt.Println("Order not found. Most recent orders:")
	recent, _, err := repos.Order.List(ctx, repository.OrderFilter{Limit: 10})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list orders: %v\n", err)
		os.Exit(1)
	}
	for _, o := range recent {
		fmt.Printf("  %s  %-10s %s\n", o.OrderNumber, o.Status, o.FullName)
	}
	os.Exit(1)
}
