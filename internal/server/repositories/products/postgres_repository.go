package products

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

const productColumns = `id, product_id, tenant_id, shop_id, product_name, variant_name, sku, barcode,
		price, cost_price, stock_quantity, track_stock, reorder_level, is_taxable, is_active, updated_at`

// PostgresRepository implements product storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var p models.Product
	err := rows.Scan(&p.ID, &p.ProductID, &p.TenantID, &p.ShopID, &p.ProductName, &p.VariantName, &p.SKU, &p.Barcode,
		&p.Price, &p.CostPrice, &p.StockQuantity, &p.TrackStock, &p.ReorderLevel, &p.IsTaxable, &p.IsActive, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Label()
	return p, nil
}

func (r *PostgresRepository) ListChanged(ctx context.Context, tenantID, shopID int64, since *time.Time) ([]models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND shop_id = $2`
	args := []any{tenantID, shopID}
	if since != nil {
		query += ` AND updated_at > $3`
		args = append(args, *since)
	}
	query += ` ORDER BY updated_at, id`

	out, err := dbx.QueryAll(ctx, r.db, scanProduct, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Search(ctx context.Context, tenantID, shopID int64, query string, limit int) ([]models.Product, error) {
	q := `SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND shop_id = $2 AND is_active
		  AND (product_name ILIKE $3 OR variant_name ILIKE $3 OR sku ILIKE $3 OR barcode = $4)
		ORDER BY product_name, variant_name
		LIMIT $5`

	out, err := dbx.QueryAll(ctx, r.db, scanProduct, q, tenantID, shopID, "%"+query+"%", query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, tenantID, shopID int64, ids []int64) (map[int64]models.Product, error) {
	out := make(map[int64]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := []any{tenantID, shopID}
	params := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		params = append(params, fmt.Sprintf("$%d", len(args)))
	}
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND shop_id = $2 AND id IN (` + strings.Join(params, ",") + `)
		ORDER BY id
		FOR UPDATE`

	list, err := dbx.QueryAll(ctx, r.db, scanProduct, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *PostgresRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	query := `UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND track_stock AND stock_quantity >= $2`

	res, err := r.db.ExecContext(ctx, query, id, qty)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return ErrInsufficientStock
	}
	return nil
}
