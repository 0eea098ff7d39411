package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	VariantID       int64           `json:"variant_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	PackagingTypeID *int64          `json:"packaging_type_id,omitempty"`
}

// Order is a completed sale. OfflineID is the terminal-assigned identity and
// is unique per tenant; a second submission of the same OfflineID resolves
// to the existing order.
type Order struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	TenantID       int64           `json:"tenant_id"`
	ShopID         int64           `json:"shop_id"`
	OfflineID      string          `json:"offline_id"`
	CustomerID     *int64          `json:"customer_id"`
	PaymentMethod  string          `json:"payment_method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderNumber is the human-facing number of order id.
func OrderNumber(id int64) string {
	return fmt.Sprintf("ORD-%d", id)
}

// OrderResult is the per-order outcome of a bulk delivery.
type OrderResult struct {
	OfflineID   string `json:"offline_id"`
	Success     bool   `json:"success"`
	OrderID     *int64 `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Message     string `json:"message,omitempty"`
}
