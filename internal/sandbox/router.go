package sandbox

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/config"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/sandbox/handlers"
	"github.com/harry1917/basalto-web/internal/sandbox/middleware"
	"github.com/harry1917/basalto-web/internal/service"
)

// NewRouter creates and configures the Gin router of the sandbox backend
func NewRouter(cfg *config.Config, repos *repository.Repositories, svc *service.OrderService, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Basalto sandbox",
			"endpoints": []string{
				"GET /health",
				"GET " + orders.CatalogPath,
				"POST " + orders.CreateOrderPath,
				"POST /payments/callback/",
				"GET /dashboard/orders",
				"GET /dashboard/inventory",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET(orders.CatalogPath, handlers.HandleCatalog(repos, logger))

	router.POST(orders.CreateOrderPath,
		middleware.Idempotency(repos, logger),
		handlers.HandleCreateOrder(svc, repos, logger),
	)

	router.POST("/payments/callback/", handlers.HandlePaymentCallback(cfg.Sandbox.PaymentWebhookSecret, svc, logger))

	dashboard := router.Group("/dashboard")
	dashboard.Use(middleware.DashboardAuth(cfg.Sandbox.DashboardKeyHash, logger))
	{
		dashboard.GET("/orders", handlers.HandleListOrders(repos, logger))
		dashboard.GET("/orders/:number", handlers.HandleGetOrder(repos, logger))
		dashboard.PATCH("/orders/:number/status", handlers.HandleUpdateOrderStatus(svc, logger))
		dashboard.GET("/inventory", handlers.HandleListInventory(repos, logger))
		dashboard.PUT("/inventory/:sku", handlers.HandleSetStock(repos, logger))
	}

	return router
}

// customRecovery logs panics and answers 500
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("idempotency_key", c.GetHeader(orders.IdempotencyHeader)),
		)
	}
}
