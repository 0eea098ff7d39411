package products

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

// ErrInsufficientStock is returned by DecrementStock when the product has
// fewer units on hand than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

type Repository interface {
	// ListChanged returns the shop's products updated after since, or all of
	// them when since is nil, oldest change first.
	ListChanged(ctx context.Context, tenantID, shopID int64, since *time.Time) ([]models.Product, error)
	Search(ctx context.Context, tenantID, shopID int64, query string, limit int) ([]models.Product, error)
	// GetByIDs returns the shop's products among ids keyed by id. Unknown ids
	// are absent from the map. Inside a transaction the rows stay locked
	// until it ends.
	GetByIDs(ctx context.Context, tenantID, shopID int64, ids []int64) (map[int64]models.Product, error)
	// DecrementStock takes qty units off a stock-tracked product, failing
	// with ErrInsufficientStock rather than going below zero.
	DecrementStock(ctx context.Context, id int64, qty int) error
}
