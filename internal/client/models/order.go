package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/gophpos/internal/money"
)

// OrderItem is a priced line of an OfflineOrder.
type OrderItem struct {
	VariantID       int64           `json:"variant_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	PackagingTypeID *int64          `json:"packaging_type_id,omitempty"`
	Discount        decimal.Decimal `json:"discount"`
}

// OfflineOrder is an immutable, fully priced sale snapshot. It is known by
// OfflineID until the server assigns an order id and number.
type OfflineOrder struct {
	OfflineID      string          `json:"offline_id"`
	ShopID         int64           `json:"shop_id"`
	Items          []OrderItem     `json:"items"`
	CustomerID     *int64          `json:"customer_id"`
	PaymentMethod  string          `json:"payment_method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Totals holds the computed amounts of a sale.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals returns subtotal = Σ(unit price × quantity),
// tax = subtotal × rate / 100 when taxEnabled, and
// total = subtotal + tax − discount. Nothing is rounded; the server of
// record owns the rounding policy.
func ComputeTotals(items []CartItem, discount decimal.Decimal, taxEnabled bool, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	tax := decimal.Zero
	if taxEnabled {
		tax = money.Percent(subtotal, taxRate)
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// OrderItemsFromCart converts cart lines to order lines.
func OrderItemsFromCart(items []CartItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{
			VariantID:       it.VariantID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			PackagingTypeID: it.PackagingTypeID,
			Discount:        it.Discount,
		})
	}
	return out
}
