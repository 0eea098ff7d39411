package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/server/models"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/repomanager"
)

const (
	minSearchLength = 2
	searchLimit     = 20
)

// CatalogService serves the product and customer snapshots terminals sync.
type CatalogService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, rm repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, rm: rm}
}

func (s *CatalogService) Products(ctx context.Context, tenantID, shopID int64, since *time.Time) ([]models.Product, error) {
	return s.rm.Products(s.db).ListChanged(ctx, tenantID, shopID, since)
}

// Search returns active products of the shop matching query. Queries
// shorter than two characters match nothing.
func (s *CatalogService) Search(ctx context.Context, tenantID, shopID int64, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return []models.Product{}, nil
	}
	return s.rm.Products(s.db).Search(ctx, tenantID, shopID, query, searchLimit)
}

func (s *CatalogService) Customers(ctx context.Context, tenantID int64, since *time.Time, query string) ([]models.Customer, error) {
	return s.rm.Customers(s.db).ListChanged(ctx, tenantID, since, strings.TrimSpace(query))
}
