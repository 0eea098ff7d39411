package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

func TestCatalog_ProductsDelta(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ps := catalog()
	ps[0].UpdatedAt = t0
	ps[1].UpdatedAt = t0.Add(time.Hour)
	ps = append(ps, models.Product{ID: 8, TenantID: 2, ShopID: shopID, ProductName: "Foreign", UpdatedAt: t0.Add(time.Hour)})
	s := NewCatalogService(nil, newMemDB(ps...))

	all, err := s.Products(context.Background(), tenantID, shopID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	changed, err := s.Products(context.Background(), tenantID, shopID, &t0)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, int64(6), changed[0].ID)
}

func TestCatalog_SearchIgnoresShortQueries(t *testing.T) {
	m := newMemDB()
	s := NewCatalogService(nil, m)

	got, err := s.Search(context.Background(), tenantID, shopID, " t ")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, m.searchArgs)

	_, err = s.Search(context.Background(), tenantID, shopID, " tea ")
	require.NoError(t, err)
	assert.Equal(t, []string{"tea"}, m.searchArgs)
}

func TestCatalog_CustomersAreTenantScoped(t *testing.T) {
	m := newMemDB()
	m.customers = []models.Customer{{ID: 1, TenantID: tenantID, Name: "Ann"}, {ID: 2, TenantID: 2, Name: "Bob"}}
	s := NewCatalogService(nil, m)

	got, err := s.Customers(context.Background(), tenantID, nil, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)
}
