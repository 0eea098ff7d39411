// Package models defines the records held by the server of record.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/dmitrijs2005/gophpos/internal/money"
)

// Product is a sellable variant stocked by one shop of one tenant.
type Product struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	TenantID       int64           `json:"tenant_id"`
	ShopID         int64           `json:"shop_id"`
	Name           string          `json:"name"`
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
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Label fills the derived name fields from the product and variant names.
func (p *Product) Label() {
	name := p.ProductName
	if p.VariantName != "" && p.VariantName != p.ProductName {
		name += " - " + p.VariantName
	}
	p.Name = name
	p.DisplayName = name
	p.AvailableStock = p.StockQuantity
}
