package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/customers"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/orders"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/products"
)

// memDB is an in-memory stand-in for the three repositories.
type memDB struct {
	mu        sync.Mutex
	products  map[int64]models.Product
	customers []models.Customer
	orders    []models.Order
	nextID    int64

	searchArgs []string
	createErr  error
}

func newMemDB(ps ...models.Product) *memDB {
	m := &memDB{products: map[int64]models.Product{}, nextID: 500}
	for _, p := range ps {
		p.Label()
		m.products[p.ID] = p
	}
	return m
}

func (m *memDB) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memDB) Products(dbx.DBTX) products.Repository        { return memProducts{m} }
func (m *memDB) Customers(dbx.DBTX) customers.Repository      { return memCustomers{m} }
func (m *memDB) Orders(dbx.DBTX) orders.Repository            { return memOrders{m} }

type memProducts struct{ m *memDB }

func (r memProducts) ListChanged(_ context.Context, tenantID, shopID int64, since *time.Time) ([]models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Product{}
	for _, p := range r.m.products {
		if p.TenantID == tenantID && p.ShopID == shopID && (since == nil || p.UpdatedAt.After(*since)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) Search(_ context.Context, tenantID, shopID int64, query string, limit int) ([]models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.searchArgs = append(r.m.searchArgs, query)
	return []models.Product{}, nil
}

func (r memProducts) GetByIDs(_ context.Context, tenantID, shopID int64, ids []int64) (map[int64]models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := map[int64]models.Product{}
	for _, id := range ids {
		if p, ok := r.m.products[id]; ok && p.TenantID == tenantID && p.ShopID == shopID {
			out[id] = p
		}
	}
	return out, nil
}

func (r memProducts) DecrementStock(_ context.Context, id int64, qty int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := r.m.products[id]
	if !p.TrackStock || p.StockQuantity < qty {
		return products.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	r.m.products[id] = p
	return nil
}

type memCustomers struct{ m *memDB }

func (r memCustomers) ListChanged(_ context.Context, tenantID int64, since *time.Time, query string) ([]models.Customer, error) {
	out := []models.Customer{}
	for _, c := range r.m.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memOrders struct{ m *memDB }

func (r memOrders) GetByOfflineID(_ context.Context, tenantID int64, offlineID string) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.orders {
		if o.TenantID == tenantID && o.OfflineID == offlineID {
			found := o
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createErr != nil {
		return r.m.createErr
	}
	for _, x := range r.m.orders {
		if x.TenantID == o.TenantID && x.OfflineID == o.OfflineID {
			return orders.ErrDuplicate
		}
	}
	r.m.nextID++
	o.ID = r.m.nextID
	o.OrderNumber = models.OrderNumber(o.ID)
	r.m.orders = append(r.m.orders, *o)
	return nil
}

// memIdem records remembered ids.
type memIdem struct {
	ids       map[string]int64
	lookupErr error
}

func (s *memIdem) Lookup(_ context.Context, tenantID int64, offlineID string) (int64, bool, error) {
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.ids[offlineID]
	return id, ok, nil
}

func (s *memIdem) Remember(_ context.Context, tenantID int64, offlineID string, orderID int64) error {
	if s.ids == nil {
		s.ids = map[string]int64{}
	}
	s.ids[offlineID] = orderID
	return nil
}
