package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Connect to the maintenance database first so the target can be created.
	admin := cfg.Database
	admin.DBName = "postgres"
	adminDB, err := sql.Open("postgres", admin.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to postgres database: %v\n", err)
		os.Exit(1)
	}
	defer adminDB.Close()

	var exists bool
	err = adminDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database.DBName,
	).Scan(&exists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check database existence: %v\n", err)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", cfg.Database.DBName)
		if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.Database.DBName)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create database: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database '%s' created successfully.\n", cfg.Database.DBName)
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(context.Background(), db); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully!")
}
