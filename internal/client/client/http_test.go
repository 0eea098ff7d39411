package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/common"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(Options{
		BaseURL:   ts.URL,
		APIToken:  "api-token",
		CSRFToken: "csrf-token",
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient(Options{BaseURL: "localhost"})
	require.Error(t, err)
}

func TestFetchProducts_QueryAndHeaders(t *testing.T) {
	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sync/products", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("shop_id"))
		assert.Equal(t, "2024-01-02T03:04:05Z", r.URL.Query().Get("updated_since"))
		assert.Equal(t, "Bearer api-token", r.Header.Get(common.AuthorizationHeaderName))
		assert.Empty(t, r.Header.Get(common.CSRFHeaderName), "no csrf on GET")

		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": 1, "tenant_id": 7, "shop_id": 3, "product_name": "Cola", "price": 1.5},
		}})
	})

	got, err := c.FetchProducts(context.Background(), 3, &since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cola", got[0].ProductName)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("1.5")))
}

func TestFetchCustomers_FullFetchOmitsSince(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/customers", r.URL.Path)
		_, has := r.URL.Query()["updated_since"]
		assert.False(t, has)
		assert.Equal(t, "ann", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": 5, "name": "Ann"}}})
	})

	got, err := c.FetchCustomers(context.Background(), nil, "ann")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)
}

func TestSearchProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pos/9/search/products", r.URL.Path)
		assert.Equal(t, "tea", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, map[string]any{"products": []map[string]any{{"id": 4, "name": "Green tea"}}})
	})

	got, err := c.SearchProducts(context.Background(), 9, "tea")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Green tea", got[0].Name)
}

func TestCompleteSale_FormAndCSRF(t *testing.T) {
	cid := int64(12)
	order := models.OfflineOrder{
		OfflineID:     "OFF-2-1-abcd",
		ShopID:        2,
		CustomerID:    &cid,
		PaymentMethod: "cash",
		Items: []models.OrderItem{
			{VariantID: 4, Quantity: 3, UnitPrice: decimal.RequireFromString("2.5")},
		},
		Total: decimal.RequireFromString("7.5"),
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pos/2/complete", r.URL.Path)
		assert.Equal(t, "csrf-token", r.Header.Get(common.CSRFHeaderName))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "OFF-2-1-abcd", r.PostForm.Get("offline_id"))
		assert.Equal(t, "12", r.PostForm.Get("customer_id"))
		assert.Equal(t, "4", r.PostForm.Get("items[0][variant_id]"))
		assert.Equal(t, "3", r.PostForm.Get("items[0][quantity]"))
		assert.Equal(t, "2.5", r.PostForm.Get("items[0][unit_price]"))
		assert.Equal(t, "7.5", r.PostForm.Get("total"))

		writeJSON(w, http.StatusOK, map[string]any{"order": map[string]any{"id": 101, "order_number": "ORD-101"}})
	})

	got, err := c.CompleteSale(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, OrderConfirmation{ID: 101, OrderNumber: "ORD-101"}, got)
}

func TestCompleteSale_NoOrderIDIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	_, err := c.CompleteSale(context.Background(), models.OfflineOrder{ShopID: 1})
	require.ErrorIs(t, err, ErrServerRejected)
}

func TestSyncOrders_Results(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/orders", r.URL.Path)
		assert.Equal(t, "csrf-token", r.Header.Get(common.CSRFHeaderName))

		var body struct {
			Orders []models.OfflineOrder `json:"orders"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Orders, 2)

		writeJSON(w, http.StatusOK, map[string]any{"results": []map[string]any{
			{"offline_id": body.Orders[0].OfflineID, "success": true, "order_id": 1, "order_number": "A-1"},
			{"offline_id": body.Orders[1].OfflineID, "success": false, "message": "out of stock"},
		}})
	})

	res, err := c.SyncOrders(context.Background(), []models.OfflineOrder{{OfflineID: "a"}, {OfflineID: "b"}})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.True(t, res[0].Success)
	require.NotNil(t, res[0].OrderID)
	assert.Equal(t, int64(1), *res[0].OrderID)
	assert.Equal(t, "out of stock", res[1].Message)
}

func TestDo_Non2xxIsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "cart is empty"})
	})

	_, err := c.SyncOrders(context.Background(), nil)
	require.ErrorIs(t, err, ErrServerRejected)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Equal(t, "cart is empty", se.Message)
}

func TestDo_UnauthorizedAndPlainTextBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "token expired\n")
	})

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, ErrServerRejected)
	assert.Contains(t, err.Error(), "token expired")
}

func TestDo_TransportFailureIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewHTTPClient(Options{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() { close(release); ts.Close() })

	c, err := NewHTTPClient(Options{BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchProducts(context.Background(), 1, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_CookiesAreKept(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		} else {
			ck, err := r.Cookie("session")
			require.NoError(t, err)
			assert.Equal(t, "s1", ck.Value)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestJournalUploadTarget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/journal/presign", r.URL.Path)
		writeJSON(w, http.StatusOK, UploadTarget{URL: "http://s3/put", Key: "journal/1.jsonl"})
	})

	got, err := c.JournalUploadTarget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "journal/1.jsonl", got.Key)
}
