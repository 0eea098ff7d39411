package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
)

// OrderConfirmation is the server's acknowledgement of a directly
// submitted sale.
type OrderConfirmation struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
}

// OrderResult is the per-order outcome of a bulk offline-order delivery.
type OrderResult struct {
	OfflineID   string `json:"offline_id"`
	Success     bool   `json:"success"`
	OrderID     *int64 `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Message     string `json:"message,omitempty"`
}

// UploadTarget is a presigned location for a journal upload.
type UploadTarget struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type Client interface {
	Ping(ctx context.Context) error
	FetchProducts(ctx context.Context, shopID int64, since *time.Time) ([]models.SyncProduct, error)
	FetchCustomers(ctx context.Context, since *time.Time, query string) ([]models.SyncCustomer, error)
	SearchProducts(ctx context.Context, shopID int64, query string) ([]models.ServerProduct, error)
	CompleteSale(ctx context.Context, order models.OfflineOrder) (OrderConfirmation, error)
	SyncOrders(ctx context.Context, orders []models.OfflineOrder) ([]OrderResult, error)
	JournalUploadTarget(ctx context.Context) (UploadTarget, error)
}
