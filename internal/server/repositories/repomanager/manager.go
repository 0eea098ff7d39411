package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/customers"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/orders"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/products"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run them inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Products(db dbx.DBTX) products.Repository
	Customers(db dbx.DBTX) customers.Repository
	Orders(db dbx.DBTX) orders.Repository
}
