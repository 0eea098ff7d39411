package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByOfflineID(ctx context.Context, tenantID int64, offlineID string) (*models.Order, error) {
	query := `SELECT id, tenant_id, shop_id, offline_id, customer_id, payment_method, amount_tendered,
			discount_amount, notes, subtotal, tax, total, created_at
		FROM orders
		WHERE tenant_id = $1 AND offline_id = $2`

	o := &models.Order{}
	var customerID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, tenantID, offlineID).Scan(&o.ID, &o.TenantID, &o.ShopID, &o.OfflineID,
		&customerID, &o.PaymentMethod, &o.AmountTendered, &o.DiscountAmount, &o.Notes, &o.Subtotal, &o.Tax, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if customerID.Valid {
		id := customerID.Int64
		o.CustomerID = &id
	}
	o.OrderNumber = models.OrderNumber(o.ID)
	return o, nil
}

func (r *PostgresRepository) Create(ctx context.Context, o *models.Order) error {
	query := `INSERT INTO orders (tenant_id, shop_id, offline_id, customer_id, payment_method, amount_tendered,
			discount_amount, notes, subtotal, tax, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, offline_id) DO NOTHING
		RETURNING id`

	var customerID sql.NullInt64
	if o.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *o.CustomerID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, o.TenantID, o.ShopID, o.OfflineID, customerID, o.PaymentMethod,
		o.AmountTendered, o.DiscountAmount, o.Notes, o.Subtotal, o.Tax, o.Total, o.CreatedAt).Scan(&o.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	o.OrderNumber = models.OrderNumber(o.ID)

	itemQuery := `INSERT INTO order_items (order_id, line, variant_id, quantity, unit_price, discount, packaging_type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, it := range o.Items {
		var packaging sql.NullInt64
		if it.PackagingTypeID != nil {
			packaging = sql.NullInt64{Int64: *it.PackagingTypeID, Valid: true}
		}
		if _, err := r.db.ExecContext(ctx, itemQuery, o.ID, i+1, it.VariantID, it.Quantity, it.UnitPrice, it.Discount, packaging); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
