package client

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
)

// OrderForm renders a sale as the form fields of the shop's complete-sale
// endpoint. Items use bracketed keys: items[0][variant_id], ...
func OrderForm(o models.OfflineOrder) url.Values {
	v := url.Values{}
	v.Set("offline_id", o.OfflineID)
	if o.CustomerID != nil {
		v.Set("customer_id", strconv.FormatInt(*o.CustomerID, 10))
	}
	v.Set("payment_method", o.PaymentMethod)
	v.Set("amount_tendered", o.AmountTendered.String())
	v.Set("discount_amount", o.DiscountAmount.String())
	if o.Notes != "" {
		v.Set("notes", o.Notes)
	}
	v.Set("subtotal", o.Subtotal.String())
	v.Set("tax", o.Tax.String())
	v.Set("total", o.Total.String())
	if !o.CreatedAt.IsZero() {
		v.Set("created_at", o.CreatedAt.UTC().Format(time.RFC3339Nano))
	}

	for i, it := range o.Items {
		key := func(f string) string { return fmt.Sprintf("items[%d][%s]", i, f) }
		v.Set(key("variant_id"), strconv.FormatInt(it.VariantID, 10))
		v.Set(key("quantity"), strconv.Itoa(it.Quantity))
		v.Set(key("unit_price"), it.UnitPrice.String())
		v.Set(key("discount"), it.Discount.String())
		if it.PackagingTypeID != nil {
			v.Set(key("packaging_type_id"), strconv.FormatInt(*it.PackagingTypeID, 10))
		}
	}
	return v
}
