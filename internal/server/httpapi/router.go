// Package httpapi exposes the server of record over HTTP: the catalog sync
// and search endpoints, sale submission (direct and bulk offline) and
// journal upload presigning.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrijs2005/gophpos/internal/logging"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

type Catalog interface {
	Products(ctx context.Context, tenantID, shopID int64, since *time.Time) ([]models.Product, error)
	Search(ctx context.Context, tenantID, shopID int64, query string) ([]models.Product, error)
	Customers(ctx context.Context, tenantID int64, since *time.Time, query string) ([]models.Customer, error)
}

type Orders interface {
	Complete(ctx context.Context, tenantID int64, o models.Order) (*models.Order, bool, error)
	Sync(ctx context.Context, tenantID int64, batch []models.Order) ([]models.OrderResult, error)
}

type Journals interface {
	PresignJournalPut(ctx context.Context, tenantID int64) (key string, url string, err error)
}

// Deps are the handler dependencies. Journals may be nil, which disables
// journal uploads.
type Deps struct {
	Catalog   Catalog
	Orders    Orders
	Journals  Journals
	Log       logging.Logger
	SecretKey []byte
}

type handler struct {
	Deps
}

// NewRouter builds the instrumented HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logging.NewNop()
	}
	h := &handler{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/api/ping", h.ping)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/api/sync/products", h.syncProducts)
		r.Get("/api/sync/customers", h.syncCustomers)
		r.Post("/api/sync/orders", h.syncOrders)
		r.Post("/api/journal/presign", h.presignJournal)

		r.Get("/pos/{shop}/search/products", h.searchProducts)
		r.Post("/pos/{shop}/complete", h.completeSale)
	})

	return otelhttp.NewHandler(r, "gophpos")
}
