package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/service"
)

// HandlePaymentCallback handles POST /payments/callback/. The signature is
// checked against the raw body; once verified the provider always gets 200.
func HandlePaymentCallback(secret string, svc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		if !service.VerifyPaymentSignature(secret, body, c.GetHeader(service.PaymentSignatureHeader)) {
			logger.Warn("Payment callback: signature mismatch")
			c.Status(http.StatusUnauthorized)
			return
		}

		if err := svc.HandlePaymentCallback(c.Request.Context(), body); err != nil {
			logger.Error("Payment callback: processing failed", zap.Error(err))
		}
		c.Status(http.StatusOK)
	}
}
