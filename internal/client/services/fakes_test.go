package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/netwatch"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/queue"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
)

var t0 = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

type fakeClient struct {
	mu sync.Mutex

	products      []models.SyncProduct
	productsErr   error
	productsSince []*time.Time
	// when set, FetchProducts signals started and waits for release
	started chan struct{}
	release chan struct{}
	// runs inside FetchProducts, after the request is recorded
	onFetch func()

	customers     []models.SyncCustomer
	customersErr  error
	customerCalls []string

	searchHits  []models.ServerProduct
	searchErr   error
	searchCalls int

	saleConf client.OrderConfirmation
	saleErr  error
	sales    []models.OfflineOrder
	// runs inside CompleteSale, outside the fake's lock
	onSale func()

	syncOrders func(ctx context.Context, orders []models.OfflineOrder) ([]client.OrderResult, error)
	syncCalls  int
	lastBatch  []models.OfflineOrder
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) FetchProducts(ctx context.Context, shopID int64, since *time.Time) ([]models.SyncProduct, error) {
	f.mu.Lock()
	f.productsSince = append(f.productsSince, since)
	started, release, onFetch := f.started, f.release, f.onFetch
	items, err := append([]models.SyncProduct(nil), f.products...), f.productsErr
	f.mu.Unlock()

	if onFetch != nil {
		onFetch()
	}

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return items, err
}

func (f *fakeClient) FetchCustomers(ctx context.Context, since *time.Time, query string) ([]models.SyncCustomer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerCalls = append(f.customerCalls, query)
	return append([]models.SyncCustomer(nil), f.customers...), f.customersErr
}

func (f *fakeClient) SearchProducts(ctx context.Context, shopID int64, query string) ([]models.ServerProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.searchHits, f.searchErr
}

func (f *fakeClient) CompleteSale(ctx context.Context, order models.OfflineOrder) (client.OrderConfirmation, error) {
	f.mu.Lock()
	f.sales = append(f.sales, order)
	conf, err, onSale := f.saleConf, f.saleErr, f.onSale
	f.mu.Unlock()

	if onSale != nil {
		onSale()
	}
	return conf, err
}

func (f *fakeClient) SyncOrders(ctx context.Context, orders []models.OfflineOrder) ([]client.OrderResult, error) {
	f.mu.Lock()
	f.syncCalls++
	f.lastBatch = orders
	fn := f.syncOrders
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, orders)
}

func (f *fakeClient) JournalUploadTarget(context.Context) (client.UploadTarget, error) {
	return client.UploadTarget{}, nil
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.productsSince)
}

type env struct {
	path   string
	st     *store.Store
	meta   *metadata.Tracker
	queue  *queue.Queue
	net    *netwatch.Monitor
	client *fakeClient
	clock  *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newEnv(t *testing.T, online bool) *env {
	t.Helper()
	clock := &testClock{now: t0}
	path := filepath.Join(t.TempDir(), "pos.db")
	st, err := store.Open(context.Background(), path, store.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	net := netwatch.NewMonitor(nil, nil)
	net.SetOnline(online)

	return &env{
		path:   path,
		st:     st,
		meta:   metadata.NewTracker(st, 24*time.Hour, clock.Now),
		queue:  queue.New(st, clock.Now),
		net:    net,
		client: &fakeClient{},
		clock:  clock,
	}
}
