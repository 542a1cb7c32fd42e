package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/sandbox"
	"github.com/harry1917/basalto-web/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Basalto sandbox",
		zap.String("port", cfg.Sandbox.Port),
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.Sandbox.Store),
	)
	if cfg.Sandbox.DashboardKeyHash == "" {
		logger.Warn("SANDBOX_DASHBOARD_KEY_HASH is empty; dashboard routes answer 503")
	}
	if cfg.Sandbox.PaymentWebhookSecret == "" {
		logger.Warn("SANDBOX_PAYMENT_WEBHOOK_SECRET is empty; payment callbacks are rejected")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, closeStore, err := sandbox.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	links := service.SandboxLinker{BaseURL: cfg.Sandbox.PaymentBaseURL}
	svc := service.NewOrderService(repos, links, cfg.Sandbox.WhatsAppNumber, logger)

	router := sandbox.NewRouter(cfg, repos, svc, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Sandbox.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Low-stock check: once on startup, then every StockCheckInterval.
	go service.RunStockCheckLoop(ctx, repos, service.StockCheckInterval, logger)

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
