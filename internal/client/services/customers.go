package services

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
)

// CustomersEntity is the sync metadata key of the customer directory.
const CustomersEntity = "customers"

// CustomerAdapter scopes the customer directory to one tenant.
type CustomerAdapter struct {
	client   client.Client
	tenantID int64
}

func NewCustomerAdapter(c client.Client, tenantID int64) *CustomerAdapter {
	return &CustomerAdapter{client: c, tenantID: tenantID}
}

func (a *CustomerAdapter) Entity() string               { return CustomersEntity }
func (a *CustomerAdapter) Collection() store.Collection { return store.Customers }

func (a *CustomerAdapter) Scope() store.Scope {
	return store.Scope{store.FieldTenantID: strconv.FormatInt(a.tenantID, 10)}
}

func (a *CustomerAdapter) fetch(ctx context.Context, since *time.Time, query string) ([]models.SyncCustomer, error) {
	items, err := a.client.FetchCustomers(ctx, since, query)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].TenantID == 0 {
			items[i].TenantID = a.tenantID
		}
	}
	return items, nil
}

func (a *CustomerAdapter) Pull(ctx context.Context, since *time.Time) ([]models.SyncCustomer, error) {
	return a.fetch(ctx, since, "")
}

func (a *CustomerAdapter) RemoteSearch(ctx context.Context, query string) ([]models.SyncCustomer, error) {
	return a.fetch(ctx, nil, query)
}

func (a *CustomerAdapter) Record(c models.SyncCustomer) (store.Record, error) {
	return store.Encode(strconv.FormatInt(c.TenantID, 10)+":"+strconv.FormatInt(c.ID, 10), c.UpdatedAt, c, map[string]string{
		store.FieldTenantID: strconv.FormatInt(c.TenantID, 10),
		store.FieldName:     c.Name,
		store.FieldPhone:    c.Phone,
		store.FieldEmail:    c.Email,
	})
}

func (a *CustomerAdapter) InScope(c models.SyncCustomer) bool {
	return c.TenantID == a.tenantID
}

var _ Adapter[models.SyncCustomer] = (*CustomerAdapter)(nil)
