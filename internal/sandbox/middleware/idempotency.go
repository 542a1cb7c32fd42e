package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/repository"
)

const (
	ctxExistingOrderID = "idempotency_existing_order_id"
	ctxKey             = "idempotency_key"
	ctxRequestHash     = "idempotency_request_hash"
)

// Idempotency replays order submissions that reuse an Idempotency-Key with
// the same body, and rejects reuse with a different body.
func Idempotency(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(orders.IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		existing, err := repos.IdempotencyKey.GetByKey(c.Request.Context(), key)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if existing != nil {
			if existing.RequestHash != requestHash {
				c.JSON(http.StatusConflict, gin.H{
					"ok":    false,
					"error": "idempotency key conflict: same key used with different payload",
				})
				c.Abort()
				return
			}
			c.Set(ctxExistingOrderID, existing.OrderID.String())
		} else {
			c.Set(ctxKey, key)
			c.Set(ctxRequestHash, requestHash)
		}

		c.Next()
	}
}

// IdempotencyInfo retrieves what Idempotency stored on the context.
func IdempotencyInfo(c *gin.Context) (key string, requestHash string, existingOrderID string, isExisting bool) {
	if existingID, exists := c.Get(ctxExistingOrderID); exists {
		if id, ok := existingID.(string); ok {
			return "", "", id, true
		}
	}

	key = c.GetString(ctxKey)
	requestHash = c.GetString(ctxRequestHash)
	return key, requestHash, "", false
}
