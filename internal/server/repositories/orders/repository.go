package orders

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

// ErrDuplicate is returned by Create when the tenant already has an order
// with the same offline id.
var ErrDuplicate = errors.New("duplicate offline id")

type Repository interface {
	// GetByOfflineID returns the order header (without items) or
	// common.ErrNotFound.
	GetByOfflineID(ctx context.Context, tenantID int64, offlineID string) (*models.Order, error)
	// Create inserts the order and its items and fills in ID and
	// OrderNumber.
	Create(ctx context.Context, order *models.Order) error
}
