package httpapi

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/gophpos/internal/money"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

var itemKey = regexp.MustCompile(`^items\[(\d+)\]\[(\w+)\]$`)

func formInt(v url.Values, key string) (*int64, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, s)
	}
	return &n, nil
}

func formAmount(v url.Values, key string, dst *decimal.Decimal) error {
	d, err := money.Parse(v.Get(key))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

// parseOrderForm reads a sale from the complete-sale form. Items use
// bracketed keys, items[0][variant_id]=5&items[0][quantity]=2, and are
// returned in index order.
func parseOrderForm(v url.Values, shopID int64) (models.Order, error) {
	o := models.Order{
		ShopID:        shopID,
		OfflineID:     v.Get("offline_id"),
		PaymentMethod: v.Get("payment_method"),
		Notes:         v.Get("notes"),
	}

	var err error
	if o.CustomerID, err = formInt(v, "customer_id"); err != nil {
		return o, err
	}
	for key, dst := range map[string]*decimal.Decimal{
		"amount_tendered": &o.AmountTendered,
		"discount_amount": &o.DiscountAmount,
		"subtotal":        &o.Subtotal,
		"tax":             &o.Tax,
		"total":           &o.Total,
	} {
		if err := formAmount(v, key, dst); err != nil {
			return o, err
		}
	}
	if s := v.Get("created_at"); s != "" {
		if o.CreatedAt, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return o, fmt.Errorf("invalid created_at %q", s)
		}
	}

	items := map[int]*models.OrderItem{}
	for key := range v {
		m := itemKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		it, ok := items[idx]
		if !ok {
			it = &models.OrderItem{}
			items[idx] = it
		}

		val := v.Get(key)
		switch m[2] {
		case "variant_id":
			id, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return o, fmt.Errorf("invalid %s %q", key, val)
			}
			it.VariantID = id
		case "quantity":
			q, err := strconv.Atoi(val)
			if err != nil {
				return o, fmt.Errorf("invalid %s %q", key, val)
			}
			it.Quantity = q
		case "unit_price":
			if err := formAmount(v, key, &it.UnitPrice); err != nil {
				return o, err
			}
		case "discount":
			if err := formAmount(v, key, &it.Discount); err != nil {
				return o, err
			}
		case "packaging_type_id":
			if it.PackagingTypeID, err = formInt(v, key); err != nil {
				return o, err
			}
		}
	}

	idx := make([]int, 0, len(items))
	for i := range items {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	o.Items = make([]models.OrderItem, 0, len(idx))
	for _, i := range idx {
		o.Items = append(o.Items, *items[i])
	}
	return o, nil
}
