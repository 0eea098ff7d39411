package customers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

type Repository interface {
	// ListChanged returns the tenant's customers updated after since (all when
	// nil). A non-empty query keeps only name, phone or email matches.
	ListChanged(ctx context.Context, tenantID int64, since *time.Time, query string) ([]models.Customer, error)
}
