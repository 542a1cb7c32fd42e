// Package orders talks to the storefront's order backend.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

// IdempotencyHeader carries the per-submission request token.
const IdempotencyHeader = "Idempotency-Key"

// Client posts orders to the backend and fetches the catalog listing.
// It sets no request timeout; callers bound requests through ctx.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates an order backend client
func NewClient(baseURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateOrder submits an order. A non-2xx answer yields *errors.ErrRemote
// carrying the body; ok=false yields *errors.ErrOrderRejected.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest, idempotencyKey string) (*CreateOrderResponse, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("order client not configured: base URL required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CreateOrderPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set(IdempotencyHeader, idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Order request failed", zap.Error(err), zap.String("idempotency_key", idempotencyKey))
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Order endpoint returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(raw)))
		return nil, &pkgerrors.ErrRemote{Status: resp.StatusCode, Body: string(raw)}
	}

	var out CreateOrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid order response: %w", err)
	}
	if out.Failed() {
		detail := out.Detail
		if detail == "" {
			detail = out.Error
		}
		return nil, &pkgerrors.ErrOrderRejected{Detail: detail}
	}

	c.logger.Info("Order created",
		zap.String("order_number", out.OrderNumber),
		zap.String("payment_method", string(out.PaymentMethod)))
	return &out, nil
}

// FetchListing returns the raw catalog markup.
func (c *Client) FetchListing(ctx context.Context) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("order client not configured: base URL required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+CatalogPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &pkgerrors.ErrRemote{Status: resp.StatusCode, Body: string(body)}
	}
	return io.ReadAll(resp.Body)
}

func upper(s string) string {
	return strings.ToUpper(s)
}
