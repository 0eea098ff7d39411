package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

type fakeCatalog struct {
	products  []models.Product
	customers []models.Customer
	err       error

	gotShop  int64
	gotSince *time.Time
	gotQuery string
	gotTen int64
}

func (f *fakeCatalog) Products(_ context.Context, tenantID, shopID int64, since *time.Time) ([]models.Product, error) {
	f.gotTen, f.gotShop, f.gotSince = tenantID, shopID, since
	return f.products, f.err
}

func (f *fakeCatalog) Search(_ context.Context, tenantID, shopID int64, query string) ([]models.Product, error) {
	f.gotTen, f.gotShop, f.gotQuery = tenantID, shopID, query
	return f.products, f.err
}

func (f *fakeCatalog) Customers(_ context.Context, tenantID int64, since *time.Time, query string) ([]models.Customer, error) {
	f.gotTen, f.gotSince, f.gotQuery = tenantID, since, query
	return f.customers, f.err
}

type fakeOrders struct {
	complete func(models.Order) (*models.Order, bool, error)
	sync     func([]models.Order) ([]models.OrderResult, error)

	got    []models.Order
	gotTen int64
}

func (f *fakeOrders) Complete(_ context.Context, tenantID int64, o models.Order) (*models.Order, bool, error) {
	f.gotTen = tenantID
	f.got = append(f.got, o)
	if f.complete == nil {
		return nil, false, errors.New("not configured")
	}
	return f.complete(o)
}

func (f *fakeOrders) Sync(_ context.Context, tenantID int64, batch []models.Order) ([]models.OrderResult, error) {
	f.gotTen = tenantID
	f.got = append(f.got, batch...)
	if f.sync == nil {
		return nil, errors.New("not configured")
	}
	return f.sync(batch)
}

type fakeJournals struct {
	err error
}

func (f *fakeJournals) PresignJournalPut(_ context.Context, tenantID int64) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "journals/1/x.jsonl", "http://s3.local/journals/1/x.jsonl?sig=1", nil
}
