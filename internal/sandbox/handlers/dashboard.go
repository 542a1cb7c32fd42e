package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/internal/service"
	"github.com/harry1917/basalto-web/pkg/errors"
)

// DashboardPageSize is the number of orders per dashboard page.
const DashboardPageSize = 25

// OrderSummary is an order row in the dashboard
type OrderSummary struct {
	OrderNumber   string               `json:"order_number"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	FullName      string               `json:"full_name"`
	Phone         string               `json:"phone"`
	Department    string               `json:"department"`
	City          string               `json:"city"`
	Total         decimal.Decimal      `json:"total"`
	TrackingCode  string               `json:"tracking_code,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// OrderDetail is the full dashboard view of one order
type OrderDetail struct {
	OrderSummary
	PaymentLink  string          `json:"payment_link,omitempty"`
	AddressLine1 string          `json:"address_line1"`
	AddressLine2 string          `json:"address_line2,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Items        []ItemView      `json:"items"`
	Events       []EventView     `json:"events"`
}

// ItemView is an order line in the dashboard
type ItemView struct {
	SKU       string          `json:"sku,omitempty"`
	Title     string          `json:"title"`
	Sleeve    string          `json:"sleeve,omitempty"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// EventView is an audit entry in the dashboard
type EventView struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// VariantView is an inventory row in the dashboard
type VariantView struct {
	SKU               string          `json:"sku"`
	Title             string          `json:"title"`
	Sleeve            string          `json:"sleeve"`
	Color             string          `json:"color"`
	Size              string          `json:"size"`
	Price             decimal.Decimal `json:"price"`
	Inventory         int             `json:"inventory"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	Active            bool            `json:"active"`
}

// UpdateStatusRequest represents a dashboard status change
type UpdateStatusRequest struct {
	Status       domain.OrderStatus `json:"status" binding:"required"`
	TrackingCode *string            `json:"tracking_code,omitempty"`
}

// SetStockRequest represents a dashboard stock correction
type SetStockRequest struct {
	Inventory *int `json:"inventory" binding:"required"`
}

func summarize(o *domain.Order) OrderSummary {
	return OrderSummary{
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		FullName:      o.FullName,
		Phone:         o.Phone,
		Department:    o.Department,
		City:          o.City,
		Total:         o.Total,
		TrackingCode:  o.TrackingCode,
		CreatedAt:     o.CreatedAt,
	}
}

// HandleListOrders handles GET /dashboard/orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		status := domain.OrderStatus(c.Query("status"))
		if status != "" && !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}

		page := 1
		if raw := c.Query("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
				return
			}
			page = p
		}

		list, total, err := repos.Order.List(ctx, repository.OrderFilter{
			Query:  c.Query("q"),
			Status: status,
			Limit:  DashboardPageSize,
			Offset: (page - 1) * DashboardPageSize,
		})
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		counts, err := repos.Order.CountByStatus(ctx)
		if err != nil {
			logger.Error("Failed to count orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		stats := gin.H{}
		all := 0
		for _, s := range []domain.OrderStatus{
			domain.OrderStatusPending,
			domain.OrderStatusPaymentLinkCreated,
			domain.OrderStatusPaid,
			domain.OrderStatusProcessing,
			domain.OrderStatusShipped,
			domain.OrderStatusDelivered,
			domain.OrderStatusCancelled,
		} {
			stats[string(s)] = counts[s]
			all += counts[s]
		}
		stats["total"] = all

		rows := make([]OrderSummary, 0, len(list))
		for _, o := range list {
			rows = append(rows, summarize(o))
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":    rows,
			"page":      page,
			"page_size": DashboardPageSize,
			"total":     total,
			"stats":     stats,
		})
	}
}

// HandleGetOrder handles GET /dashboard/orders/:number
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		order, err := repos.Order.GetByNumber(ctx, c.Param("number"))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		items, err := repos.OrderItem.GetByOrderID(ctx, order.ID)
		if err != nil {
			logger.Error("Failed to get order items", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		events, err := repos.OrderEvent.GetByOrderID(ctx, order.ID)
		if err != nil {
			logger.Warn("Failed to get order events", zap.Error(err))
		}

		detail := OrderDetail{
			OrderSummary: summarize(order),
			PaymentLink:  order.PaymentLink,
			AddressLine1: order.AddressLine1,
			AddressLine2: order.AddressLine2,
			Notes:        order.Notes,
			Subtotal:     order.Subtotal,
			Shipping:     order.Shipping,
			Items:        make([]ItemView, 0, len(items)),
			Events:       make([]EventView, 0, len(events)),
		}
		for _, it := range items {
			detail.Items = append(detail.Items, ItemView{
				SKU:       it.SKU,
				Title:     it.Title,
				Sleeve:    it.Sleeve,
				Color:     it.Color,
				Size:      it.Size,
				UnitPrice: it.UnitPrice,
				Qty:       it.Qty,
				LineTotal: it.LineTotal,
			})
		}
		for _, ev := range events {
			detail.Events = append(detail.Events, EventView{Type: ev.EventType, Data: ev.EventData, CreatedAt: ev.CreatedAt})
		}

		c.JSON(http.StatusOK, detail)
	}
}

// HandleUpdateOrderStatus handles PATCH /dashboard/orders/:number/status
func HandleUpdateOrderStatus(svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("number"), req.Status, req.TrackingCode)
		if err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case *errors.ErrInvalidStateTransition, *errors.ErrValidation:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error("Failed to update order status", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order_number":  order.OrderNumber,
			"status":        order.Status,
			"tracking_code": order.TrackingCode,
		})
	}
}

// HandleListInventory handles GET /dashboard/inventory. low=1 keeps only
// variants at or below their alert threshold.
func HandleListInventory(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lowOnly := c.Query("low") == "1"
		variants, err := repos.Variant.List(c.Request.Context(), lowOnly)
		if err != nil {
			logger.Error("Failed to list inventory", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		rows := make([]VariantView, 0, len(variants))
		for _, v := range variants {
			rows = append(rows, VariantView{
				SKU:               v.SKU,
				Title:             v.Title,
				Sleeve:            v.Sleeve,
				Color:             v.Color,
				Size:              v.Size,
				Price:             v.Price,
				Inventory:         v.Inventory,
				LowStockThreshold: v.LowStockThreshold,
				LowStock:          v.IsLowStock(),
				Active:            v.Active,
			})
		}
		c.JSON(http.StatusOK, gin.H{"variants": rows, "count": len(rows)})
	}
}

// HandleSetStock handles PUT /dashboard/inventory/:sku
func HandleSetStock(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}
		if *req.Inventory < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "inventory cannot be negative"})
			return
		}

		sku := c.Param("sku")
		if err := repos.Variant.SetInventory(c.Request.Context(), sku, *req.Inventory); err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "variant not found"})
				return
			}
			logger.Error("Failed to set inventory", zap.String("sku", sku), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		logger.Info("Inventory set", zap.String("sku", sku), zap.Int("inventory", *req.Inventory))
		c.JSON(http.StatusOK, gin.H{"sku": sku, "inventory": *req.Inventory})
	}
}
