package models

import (
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/dmitrijs2005/gophpos/internal/money"
)

// PackagingType is an alternative selling unit of a variant (box, crate).
type PackagingType struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// SyncProduct is a sellable variant as snapshotted from the server of record.
// It belongs to exactly one tenant and one shop.
type SyncProduct struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	TenantID       int64           `json:"tenant_id"`
	ShopID         int64           `json:"shop_id"`
	DisplayName    string          `json:"display_name"`
	ProductName    string          `json:"product_name"`
	VariantName    string          `json:"variant_name"`
	SKU            string          `json:"sku"`
	Barcode        string          `json:"barcode"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	StockQuantity  int             `json:"stock_quantity"`
	AvailableStock int             `json:"available_stock"`
	TrackStock     bool            `json:"track_stock"`
	ReorderLevel   int             `json:"reorder_level"`
	IsTaxable      bool            `json:"is_taxable"`
	IsActive       bool            `json:"is_active"`
	Image          string          `json:"image,omitempty"`
	PackagingTypes []PackagingType `json:"packaging_types,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Name is the label shown to the cashier.
func (p SyncProduct) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.VariantName != "" && p.VariantName != p.ProductName {
		return p.ProductName + " - " + p.VariantName
	}
	return p.ProductName
}

// ServerProduct is a product as returned by the shop's online search
// endpoint. It carries no tenant or shop; those come from the request.
type ServerProduct struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	Name           string          `json:"name"`
	ProductName    string          `json:"product_name"`
	VariantName    string          `json:"variant_name"`
	SKU            string          `json:"sku"`
	Barcode        string          `json:"barcode"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	StockQuantity  int             `json:"stock_quantity"`
	AvailableStock int             `json:"available_stock"`
	TrackStock     bool            `json:"track_stock"`
	ReorderLevel   int             `json:"reorder_level"`
	IsTaxable      bool            `json:"is_taxable"`
	IsActive       bool            `json:"is_active"`
	Image          string          `json:"image,omitempty"`
	PackagingTypes []PackagingType `json:"packaging_types,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToSyncProduct maps a search hit into the cached shape. A hit without a
// version is stamped with the Unix epoch so that any synced snapshot of the
// same variant replaces it.
func (p ServerProduct) ToSyncProduct(tenantID, shopID int64) SyncProduct {
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Unix(0, 0).UTC()
	}
	return SyncProduct{
		ID:             p.ID,
		ProductID:      p.ProductID,
		TenantID:       tenantID,
		ShopID:         shopID,
		DisplayName:    p.Name,
		ProductName:    p.ProductName,
		VariantName:    p.VariantName,
		SKU:            p.SKU,
		Barcode:        p.Barcode,
		Price:          p.Price,
		CostPrice:      p.CostPrice,
		StockQuantity:  p.StockQuantity,
		AvailableStock: p.AvailableStock,
		TrackStock:     p.TrackStock,
		ReorderLevel:   p.ReorderLevel,
		IsTaxable:      p.IsTaxable,
		IsActive:       p.IsActive,
		Image:          p.Image,
		PackagingTypes: p.PackagingTypes,
		UpdatedAt:      updated,
	}
}
