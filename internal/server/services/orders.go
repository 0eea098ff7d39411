package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/logging"
	"github.com/dmitrijs2005/gophpos/internal/server/idempotency"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/orders"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/products"
	"github.com/dmitrijs2005/gophpos/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophpos/internal/timex"
)

type txFunc func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

// OrderService turns submitted sales into orders. Submissions are idempotent
// by offline id: a replay returns the order created the first time.
type OrderService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	idem   idempotency.Store
	log    logging.Logger
	now    timex.Clock
	withTx txFunc
}

func NewOrderService(db *sql.DB, rm repomanager.RepositoryManager, idem idempotency.Store, log logging.Logger) *OrderService {
	if idem == nil {
		idem = idempotency.Nop{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &OrderService{
		db:   db,
		rm:   rm,
		idem: idem,
		log:  log,
		now:  timex.SystemClock,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
			return dbx.WithTx(ctx, db, nil, fn)
		},
	}
}

func validate(o *models.Order) error {
	if len(o.Items) == 0 {
		return invalid("order has no items")
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return invalid("invalid quantity %d for variant %d", it.Quantity, it.VariantID)
		}
		if it.UnitPrice.IsNegative() {
			return invalid("negative price for variant %d", it.VariantID)
		}
	}
	if o.Total.IsNegative() {
		return invalid("negative total")
	}
	return nil
}

// existing returns the order already created for offlineID, or nil. A
// cache hit carries only the id and number.
func (s *OrderService) existing(ctx context.Context, tenantID int64, offlineID string) (*models.Order, error) {
	id, ok, err := s.idem.Lookup(ctx, tenantID, offlineID)
	if err != nil {
		s.log.Warn(ctx, "idempotency cache unavailable", "error", err)
	}
	if ok {
		return &models.Order{ID: id, OrderNumber: models.OrderNumber(id), TenantID: tenantID, OfflineID: offlineID}, nil
	}

	found, err := s.rm.Orders(s.db).GetByOfflineID(ctx, tenantID, offlineID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	return found, err
}

// Complete records a sale for tenantID. The second return value reports
// whether the order already existed.
func (s *OrderService) Complete(ctx context.Context, tenantID int64, o models.Order) (*models.Order, bool, error) {
	o.TenantID = tenantID
	if o.OfflineID == "" {
		o.OfflineID = "WEB-" + uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	if err := validate(&o); err != nil {
		return nil, false, err
	}

	found, err := s.existing(ctx, tenantID, o.OfflineID)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		return found, true, nil
	}

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.create(ctx, tx, &o)
	})
	if errors.Is(err, orders.ErrDuplicate) {
		// lost a race with a concurrent submission of the same sale
		found, err := s.rm.Orders(s.db).GetByOfflineID(ctx, tenantID, o.OfflineID)
		if err != nil {
			return nil, false, err
		}
		return found, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if err := s.idem.Remember(ctx, tenantID, o.OfflineID, o.ID); err != nil {
		s.log.Warn(ctx, "idempotency cache not updated", "offline_id", o.OfflineID, "error", err)
	}
	s.log.Info(ctx, "order created", "tenant_id", tenantID, "shop_id", o.ShopID, "order_id", o.ID, "offline_id", o.OfflineID)
	return &o, false, nil
}

func (s *OrderService) create(ctx context.Context, tx dbx.DBTX, o *models.Order) error {
	qty := make(map[int64]int, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := qty[it.VariantID]; !ok {
			ids = append(ids, it.VariantID)
		}
		qty[it.VariantID] += it.Quantity
	}

	// rows stay locked until the transaction ends
	catalog := s.rm.Products(tx)
	known, err := catalog.GetByIDs(ctx, o.TenantID, o.ShopID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p, ok := known[id]
		if !ok || !p.IsActive {
			return invalid("unknown product %d", id)
		}
		if p.TrackStock && qty[id] > p.StockQuantity {
			return invalid("insufficient stock for %s", p.Name)
		}
	}

	if err := s.rm.Orders(tx).Create(ctx, o); err != nil {
		return err
	}

	for _, id := range ids {
		if known[id].TrackStock {
			err := catalog.DecrementStock(ctx, id, qty[id])
			if errors.Is(err, products.ErrInsufficientStock) {
				return invalid("insufficient stock for %s", known[id].Name)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Sync records a batch of offline sales in order. Refused sales are
// reported per order; any other failure aborts the batch so that the
// client retries it as a whole.
func (s *OrderService) Sync(ctx context.Context, tenantID int64, batch []models.Order) ([]models.OrderResult, error) {
	results := make([]models.OrderResult, 0, len(batch))
	for _, o := range batch {
		created, _, err := s.Complete(ctx, tenantID, o)

		var verr *ValidationError
		if errors.As(err, &verr) {
			results = append(results, models.OrderResult{OfflineID: o.OfflineID, Message: verr.Message})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sync order %s: %w", o.OfflineID, err)
		}

		id := created.ID
		results = append(results, models.OrderResult{
			OfflineID:   o.OfflineID,
			Success:     true,
			OrderID:     &id,
			OrderNumber: created.OrderNumber,
		})
	}
	s.log.Info(ctx, "offline orders synced", "tenant_id", tenantID, "orders", len(batch))
	return results, nil
}
