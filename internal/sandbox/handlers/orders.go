package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/sandbox/middleware"
	"github.com/harry1917/basalto-web/internal/service"
	"github.com/harry1917/basalto-web/pkg/errors"
)

// HandleCreateOrder handles POST /api/orders/create/. Rejections answer with
// a plain-text message the storefront shows as is.
func HandleCreateOrder(svc *service.OrderService, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		key, requestHash, existingOrderID, isExisting := middleware.IdempotencyInfo(c)
		if isExisting {
			orderID, err := uuid.Parse(existingOrderID)
			if err != nil {
				logger.Error("Invalid existing order ID from idempotency", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
				return
			}
			order, items, err := loadOrder(c, repos, orderID)
			if err != nil {
				logger.Error("Failed to load replayed order", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
				return
			}
			logger.Info("Replaying order", zap.String("order_number", order.OrderNumber))
			c.JSON(http.StatusOK, svc.Response(order, items))
			return
		}

		var req orders.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "JSON inválido")
			return
		}

		resp, err := svc.CreateOrder(ctx, &req)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrValidation:
				c.String(http.StatusBadRequest, e.Message)
			case *errors.ErrConflict:
				c.String(http.StatusConflict, e.Error())
			case *errors.ErrPaymentLink:
				c.JSON(http.StatusBadGateway, gin.H{
					"ok":           false,
					"error":        "PAYMENT_LINK_ERROR",
					"detail":       e.Detail,
					"order_number": e.OrderNumber,
				})
			default:
				logger.Error("Failed to create order", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
			}
			return
		}

		if key != "" {
			if order, err := repos.Order.GetByNumber(ctx, resp.OrderNumber); err == nil {
				if err := repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
					Key:         key,
					OrderID:     order.ID,
					RequestHash: requestHash,
				}); err != nil {
					logger.Warn("Failed to store idempotency key", zap.Error(err))
				}
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

func loadOrder(c *gin.Context, repos *repository.Repositories, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	order, err := repos.Order.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	items, err := repos.OrderItem.GetByOrderID(c.Request.Context(), order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}
