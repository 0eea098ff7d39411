package services

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
)

// ProductsEntity is the sync metadata key of the product catalog.
const ProductsEntity = "products"

// ProductAdapter scopes the product catalog to one tenant and shop.
type ProductAdapter struct {
	client   client.Client
	tenantID int64
	shopID   int64
}

func NewProductAdapter(c client.Client, tenantID, shopID int64) *ProductAdapter {
	return &ProductAdapter{client: c, tenantID: tenantID, shopID: shopID}
}

func (a *ProductAdapter) Entity() string               { return ProductsEntity }
func (a *ProductAdapter) Collection() store.Collection { return store.Products }

func (a *ProductAdapter) Scope() store.Scope {
	return store.Scope{
		store.FieldTenantID: strconv.FormatInt(a.tenantID, 10),
		store.FieldShopID:   strconv.FormatInt(a.shopID, 10),
	}
}

// normalize fills the scope of records the server sent without one.
func (a *ProductAdapter) normalize(p models.SyncProduct) models.SyncProduct {
	if p.TenantID == 0 {
		p.TenantID = a.tenantID
	}
	if p.ShopID == 0 {
		p.ShopID = a.shopID
	}
	return p
}

func (a *ProductAdapter) Pull(ctx context.Context, since *time.Time) ([]models.SyncProduct, error) {
	items, err := a.client.FetchProducts(ctx, a.shopID, since)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = a.normalize(items[i])
	}
	return items, nil
}

func (a *ProductAdapter) RemoteSearch(ctx context.Context, query string) ([]models.SyncProduct, error) {
	hits, err := a.client.SearchProducts(ctx, a.shopID, query)
	if err != nil {
		return nil, err
	}
	out := make([]models.SyncProduct, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ToSyncProduct(a.tenantID, a.shopID))
	}
	return out, nil
}

func (a *ProductAdapter) Record(p models.SyncProduct) (store.Record, error) {
	return store.Encode(productKey(p.ShopID, p.ID), p.UpdatedAt, p, map[string]string{
		store.FieldTenantID: strconv.FormatInt(p.TenantID, 10),
		store.FieldShopID:   strconv.FormatInt(p.ShopID, 10),
		store.FieldName:     p.Name(),
		store.FieldSKU:      p.SKU,
		store.FieldBarcode:  p.Barcode,
	})
}

func (a *ProductAdapter) InScope(p models.SyncProduct) bool {
	return p.TenantID == a.tenantID && p.ShopID == a.shopID
}

// productKey keeps per-shop snapshots of the same variant apart.
func productKey(shopID, variantID int64) string {
	return strconv.FormatInt(shopID, 10) + ":" + strconv.FormatInt(variantID, 10)
}

var _ Adapter[models.SyncProduct] = (*ProductAdapter)(nil)
