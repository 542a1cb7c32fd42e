package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentSignatureHeader carries the callback body's HMAC.
const PaymentSignatureHeader = "wompi_hash"

// SandboxLinker issues fake payment links under a base URL. An empty base
// URL issues no link, leaving card orders pending.
type SandboxLinker struct {
	BaseURL string
}

func (l SandboxLinker) CreatePaymentLink(_ context.Context, orderNumber string, amount decimal.Decimal) (string, error) {
	base := strings.TrimSpace(l.BaseURL)
	if base == "" {
		return "", nil
	}
	q := url.Values{}
	q.Set("monto", amount.StringFixed(2))
	return base + url.PathEscape(orderNumber) + "?" + q.Encode(), nil
}

// SignPayment returns the lowercase hex HMAC-SHA256 of body.
func SignPayment(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks a callback signature in constant time.
// A missing secret or signature never verifies.
func VerifyPaymentSignature(secret string, body []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignPayment(secret, body)), []byte(signature))
}

type paymentCallback struct {
	IdExterno string `json:"IdExterno"`
}

// HandlePaymentCallback applies a verified callback body. Bodies without an
// order reference, and orders no longer awaiting payment, are ignored.
func (s *OrderService) HandlePaymentCallback(ctx context.Context, body []byte) error {
	var cb paymentCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		s.logger.Warn("Payment callback: invalid JSON", zap.Error(err))
		return nil
	}
	ref := strings.TrimSpace(cb.IdExterno)
	if ref == "" {
		s.logger.Warn("Payment callback without order reference")
		return nil
	}
	changed, err := s.ConfirmPayment(ctx, ref)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Info("Payment callback: order not found or already processed", zap.String("order_number", ref))
	}
	return nil
}
