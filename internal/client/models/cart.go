package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CartKeyPrefix prefixes the shop id to form the persisted cart key.
const CartKeyPrefix = "cart_"

// CartID returns the synthetic key of the shop's cart record.
func CartID(shopID int64) string {
	return CartKeyPrefix + strconv.FormatInt(shopID, 10)
}

// CartItem is one cart line. Quantity is at least 1 while the line exists.
// UnitPrice is captured when the line is first added and is not refreshed.
type CartItem struct {
	VariantID       int64           `json:"variant_id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	PackagingTypeID *int64          `json:"packaging_type_id,omitempty"`
	Discount        decimal.Decimal `json:"discount"`
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the persisted envelope of a shop's in-progress sale.
type Cart struct {
	ID         string          `json:"id"`
	ShopID     int64           `json:"shop_id"`
	Items      []CartItem      `json:"items"`
	CustomerID *int64          `json:"customer_id"`
	Discount   decimal.Decimal `json:"discount"`
	Notes      string          `json:"notes,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewCart returns an empty cart for shopID.
func NewCart(shopID int64) Cart {
	return Cart{ID: CartID(shopID), ShopID: shopID, Items: []CartItem{}}
}

// Clone returns a deep copy so callers cannot alias the session's state.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	if c.CustomerID != nil {
		id := *c.CustomerID
		out.CustomerID = &id
	}
	return out
}

// IndexOf returns the position of variantID in the cart, or -1.
func (c Cart) IndexOf(variantID int64) int {
	for i, it := range c.Items {
		if it.VariantID == variantID {
			return i
		}
	}
	return -1
}
