package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry1917/basalto-web/internal/domain"
	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

func sampleRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		Country:       "El Salvador",
		FullName:      "Ana López",
		Phone:         "7000-0000",
		AddressLine1:  "Col. Escalón",
		PaymentMethod: domain.PaymentMethodCard,
		Items: []OrderItem{
			WireItem(domain.LineItem{SKU: "BAS-CC-MC-NGR-M", Size: "m", Price: "$25.00", Qty: 2}),
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CreateOrderPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotKey = r.Header.Get(IdempotencyHeader)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(`{"ok":true,"order_number":"BAS-20260101-0001","payment_link":"https://pay.example/abc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	resp, err := c.CreateOrder(context.Background(), sampleRequest(), "key-1")

	require.NoError(t, err)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "BAS-20260101-0001", resp.OrderNumber)
	assert.Equal(t, "https://pay.example/abc", resp.PaymentLink)

	items := gotBody["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "25.00", first["unit_price"])
	assert.Equal(t, "M", first["size"])
	assert.Equal(t, float64(2), first["qty"])
	assert.Equal(t, "card", gotBody["payment_method"])
	assert.Equal(t, "", gotBody["notes"])
}

func TestCreateOrder_MissingOKIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil).CreateOrder(context.Background(), sampleRequest(), "")

	require.NoError(t, err)
	assert.Empty(t, resp.OrderNumber)
}

func TestCreateOrder_NonSuccessStatusCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"ok":false,"error":"SKU sin stock"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).CreateOrder(context.Background(), sampleRequest(), "")

	var remote *pkgerrors.ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadGateway, remote.Status)
	assert.Equal(t, `{"ok":false,"error":"SKU sin stock"}`, remote.Error())
}

func TestCreateOrder_ExplicitFailureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"detail":"Talla inválida"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).CreateOrder(context.Background(), sampleRequest(), "")

	var rejected *pkgerrors.ErrOrderRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Talla inválida", rejected.Detail)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).CreateOrder(context.Background(), sampleRequest(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order response")
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	_, err := NewClient("", nil).CreateOrder(context.Background(), sampleRequest(), "")
	require.Error(t, err)
}

func TestFetchListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CatalogPath {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<div id="catalogGrid-men"></div>`))
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL, nil).FetchListing(context.Background())

	require.NoError(t, err)
	assert.Contains(t, string(raw), "catalogGrid-men")
}

func TestWireItem(t *testing.T) {
	w := WireItem(domain.LineItem{Price: "30,00", Qty: 0})
	assert.Equal(t, "3000", w.UnitPrice)
	assert.Equal(t, 1, w.Qty)

	assert.Equal(t, "0", WireItem(domain.LineItem{}).UnitPrice)
}
