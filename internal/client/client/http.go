package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/common"
)

const maxErrorBody = 4 << 10

// Options configures an HTTPClient.
type Options struct {
	BaseURL   string
	APIToken  string
	CSRFToken string
	Timeout   time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// HTTPClient is the REST implementation of Client.
type HTTPClient struct {
	base      *url.URL
	apiToken  string
	csrfToken string
	http      *http.Client
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host required", opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &HTTPClient{
		base:      base,
		apiToken:  opts.APIToken,
		csrfToken: opts.CSRFToken,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(rt),
		},
	}, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func serverMessage(body []byte) string {
	var v struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &v); err == nil {
		if v.Message != "" {
			return v.Message
		}
		if v.Error != "" {
			return v.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// do sends the request and decodes a 2xx JSON body into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.apiToken)
	}
	if method != http.MethodGet && method != http.MethodHead && c.csrfToken != "" {
		req.Header.Set(common.CSRFHeaderName, c.csrfToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServerError{StatusCode: resp.StatusCode, Message: serverMessage(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A body cut off by a timeout is a transport failure, not a rejection.
		var ne interface{ Timeout() bool }
		if errors.As(err, &ne) && ne.Timeout() {
			return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
		}
		return fmt.Errorf("%w: %s %s: malformed response: %v", ErrServerRejected, method, path, err)
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(b), "application/json", out)
}

func sinceParam(q url.Values, since *time.Time) {
	if since != nil {
		q.Set("updated_since", since.UTC().Format(time.RFC3339Nano))
	}
}

// Ping checks that the server of record is reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/api/ping", nil, nil)
}

// FetchProducts pulls the shop's products changed after since, or all of
// them when since is nil.
func (c *HTTPClient) FetchProducts(ctx context.Context, shopID int64, since *time.Time) ([]models.SyncProduct, error) {
	q := url.Values{}
	q.Set("shop_id", strconv.FormatInt(shopID, 10))
	sinceParam(q, since)

	var resp struct {
		Data []models.SyncProduct `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/sync/products", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FetchCustomers pulls the tenant's customers changed after since. A
// non-empty query narrows the result server-side.
func (c *HTTPClient) FetchCustomers(ctx context.Context, since *time.Time, query string) ([]models.SyncCustomer, error) {
	q := url.Values{}
	sinceParam(q, since)
	if query != "" {
		q.Set("query", query)
	}

	var resp struct {
		Data []models.SyncCustomer `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/sync/customers", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SearchProducts runs the shop's online product search.
func (c *HTTPClient) SearchProducts(ctx context.Context, shopID int64, query string) ([]models.ServerProduct, error) {
	q := url.Values{}
	q.Set("query", query)

	var resp struct {
		Products []models.ServerProduct `json:"products"`
	}
	path := fmt.Sprintf("/pos/%d/search/products", shopID)
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// CompleteSale submits a sale directly. Only a response carrying an order id
// counts as confirmation.
func (c *HTTPClient) CompleteSale(ctx context.Context, order models.OfflineOrder) (OrderConfirmation, error) {
	var resp struct {
		Order *OrderConfirmation `json:"order"`
	}
	path := fmt.Sprintf("/pos/%d/complete", order.ShopID)
	form := OrderForm(order).Encode()
	if err := c.do(ctx, http.MethodPost, path, nil, strings.NewReader(form), "application/x-www-form-urlencoded", &resp); err != nil {
		return OrderConfirmation{}, err
	}
	if resp.Order == nil || resp.Order.ID == 0 {
		return OrderConfirmation{}, fmt.Errorf("%w: sale %s: response has no order id", ErrServerRejected, order.OfflineID)
	}
	return *resp.Order, nil
}

// SyncOrders delivers queued offline orders in one request and returns the
// per-order results.
func (c *HTTPClient) SyncOrders(ctx context.Context, orders []models.OfflineOrder) ([]OrderResult, error) {
	req := struct {
		Orders []models.OfflineOrder `json:"orders"`
	}{Orders: orders}

	var resp struct {
		Results []OrderResult `json:"results"`
	}
	if err := c.postJSON(ctx, "/api/sync/orders", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// JournalUploadTarget asks the server for a presigned journal upload URL.
func (c *HTTPClient) JournalUploadTarget(ctx context.Context) (UploadTarget, error) {
	var t UploadTarget
	if err := c.postJSON(ctx, "/api/journal/presign", struct{}{}, &t); err != nil {
		return UploadTarget{}, err
	}
	if t.URL == "" {
		return UploadTarget{}, fmt.Errorf("%w: empty upload url", ErrServerRejected)
	}
	return t, nil
}

var _ Client = (*HTTPClient)(nil)
