package customers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanCustomer(rows *sql.Rows) (models.Customer, error) {
	var c models.Customer
	err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) ListChanged(ctx context.Context, tenantID int64, since *time.Time, query string) ([]models.Customer, error) {
	q := `SELECT id, tenant_id, name, phone, email, address, updated_at
		FROM customers
		WHERE tenant_id = $1`
	args := []any{tenantID}
	if since != nil {
		args = append(args, *since)
		q += fmt.Sprintf(` AND updated_at > $%d`, len(args))
	}
	if query != "" {
		args = append(args, "%"+query+"%")
		n := len(args)
		q += fmt.Sprintf(` AND (name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)`, n, n, n)
	}
	q += ` ORDER BY updated_at, id`

	out, err := dbx.QueryAll(ctx, r.db, scanCustomer, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
