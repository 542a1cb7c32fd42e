package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/harry1917/basalto-web/internal/sandbox/middleware"
)

func main() {
	keyFlag := flag.String("key", "", "Dashboard key to hash (save it; it cannot be retrieved later)")
	flag.Parse()

	key := *keyFlag
	if key == "" && flag.NArg() >= 1 {
		key = flag.Arg(0)
	}
	// Trim so the hash matches what DashboardAuth compares against.
	key = strings.TrimSpace(key)
	if key == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/hash-dashboard-key/main.go --key \"your-dashboard-key\"")
		os.Exit(1)
	}

	hash, err := middleware.HashKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Add this to your .env:")
	fmt.Printf("SANDBOX_DASHBOARD_KEY_HASH=%s\n", hash)
}
