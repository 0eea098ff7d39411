package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/netwatch"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/queue"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/logging"
	"github.com/dmitrijs2005/gophpos/internal/timex"
)

var ErrEmptyCart = errors.New("cart is empty")

// SessionConfig holds the shop settings a sale is priced with.
type SessionConfig struct {
	ShopID     int64
	TaxEnabled bool
	// TaxRate is a percentage, e.g. 7.5.
	TaxRate decimal.Decimal
}

// SaleOptions are the checkout inputs. Discount and Notes, when set,
// override the values stored on the cart.
type SaleOptions struct {
	PaymentMethod  string
	AmountTendered decimal.Decimal
	Discount       *decimal.Decimal
	Notes          string
}

// SaleResult is the outcome of CompleteSale. Success is false only when the
// sale could be neither submitted nor queued.
type SaleResult struct {
	Success     bool
	IsOffline   bool
	OrderID     int64
	OrderNumber string
	OfflineID   string
	Total       decimal.Decimal
	Error       string
}

// Session owns the shop's cart and completes sales. The in-memory cart is
// authoritative; every mutation is written through to the local store.
type Session struct {
	cfg    SessionConfig
	st     *store.Store
	queue  queue.Repository
	client client.Client
	net    netwatch.Status
	log    logging.Logger
	now    timex.Clock

	mu   sync.Mutex
	cart models.Cart
	// bumped on every cart change
	rev uint64

	// one checkout at a time
	saleMu  sync.Mutex
	pending atomic.Int64

	runner runner
}

func NewSession(cfg SessionConfig, st *store.Store, q queue.Repository, c client.Client, net netwatch.Status, log logging.Logger, clock timex.Clock) *Session {
	if log == nil {
		log = logging.NewNop()
	}
	if clock == nil {
		clock = timex.SystemClock
	}
	return &Session{
		cfg:    cfg,
		st:     st,
		queue:  q,
		client: c,
		net:    net,
		log:    log.With("shop_id", cfg.ShopID),
		now:    clock,
		cart:   models.NewCart(cfg.ShopID),
	}
}

// Load restores the persisted cart and the pending-order count. A missing
// cart starts empty; an unreadable store leaves an empty in-memory cart and
// returns the error.
func (s *Session) Load(ctx context.Context) error {
	if _, err := s.RefreshPendingCount(ctx); err != nil {
		s.log.Warn(ctx, "pending count unavailable", "error", err)
	}

	rec, err := s.st.Get(ctx, store.Carts, models.CartID(s.cfg.ShopID))
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	cart, err := store.Decode[models.Cart](rec)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	s.mu.Lock()
	s.cart = cart
	s.rev++
	s.mu.Unlock()
	return nil
}

// Cart returns a copy of the current cart.
func (s *Session) Cart() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Session) snapshot() (models.Cart, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone(), s.rev
}

// Totals prices the current cart.
func (s *Session) Totals() models.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ComputeTotals(s.cart.Items, s.cart.Discount, s.cfg.TaxEnabled, s.cfg.TaxRate)
}

// mutate applies fn to the cart and writes the result through. The memory
// change is kept even when the write fails.
func (s *Session) mutate(ctx context.Context, fn func(c *models.Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.cart)
	s.cart.UpdatedAt = s.now()
	s.rev++
	return s.persist(ctx, s.cart)
}

// persist must be called with s.mu held.
func (s *Session) persist(ctx context.Context, cart models.Cart) error {
	rec, err := store.Encode(cart.ID, cart.UpdatedAt, cart, map[string]string{
		store.FieldShopID: strconv.FormatInt(cart.ShopID, 10),
	})
	if err == nil {
		err = s.st.Put(ctx, store.Carts, rec)
	}
	if err != nil {
		s.log.Error(ctx, "cart not persisted", "error", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// AddToCart adds one unit of p. A variant already in the cart keeps the
// price it was first added at.
func (s *Session) AddToCart(ctx context.Context, p models.SyncProduct) error {
	return s.mutate(ctx, func(c *models.Cart) {
		if i := c.IndexOf(p.ID); i >= 0 {
			c.Items[i].Quantity++
			return
		}
		c.Items = append(c.Items, models.CartItem{
			VariantID: p.ID,
			Name:      p.Name(),
			SKU:       p.SKU,
			Barcode:   p.Barcode,
			Quantity:  1,
			UnitPrice: p.Price,
		})
	})
}

// UpdateQuantity sets the quantity of a line; qty <= 0 removes it.
func (s *Session) UpdateQuantity(ctx context.Context, variantID int64, qty int) error {
	if qty <= 0 {
		return s.RemoveFromCart(ctx, variantID)
	}
	return s.mutate(ctx, func(c *models.Cart) {
		if i := c.IndexOf(variantID); i >= 0 {
			c.Items[i].Quantity = qty
		}
	})
}

func (s *Session) RemoveFromCart(ctx context.Context, variantID int64) error {
	return s.mutate(ctx, func(c *models.Cart) {
		if i := c.IndexOf(variantID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	})
}

// ClearCart empties the cart, dropping customer, discount and notes.
func (s *Session) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func(c *models.Cart) {
		*c = models.NewCart(s.cfg.ShopID)
	})
}

// SetCart replaces the cart wholesale. The id and shop are forced to this
// session's.
func (s *Session) SetCart(ctx context.Context, cart models.Cart) error {
	next := cart.Clone()
	next.ID = models.CartID(s.cfg.ShopID)
	next.ShopID = s.cfg.ShopID
	if next.Items == nil {
		next.Items = []models.CartItem{}
	}
	return s.mutate(ctx, func(c *models.Cart) { *c = next })
}

// SetCustomer attaches a customer to the sale; nil detaches.
func (s *Session) SetCustomer(ctx context.Context, customerID *int64) error {
	return s.mutate(ctx, func(c *models.Cart) {
		if customerID == nil {
			c.CustomerID = nil
			return
		}
		id := *customerID
		c.CustomerID = &id
	})
}

func (s *Session) SetDiscount(ctx context.Context, d decimal.Decimal) error {
	return s.mutate(ctx, func(c *models.Cart) { c.Discount = d })
}

func (s *Session) newOfflineID() (string, error) {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("OFF-%d-%d-%s", s.cfg.ShopID, s.now().UnixMilli(), suffix), nil
}

// CompleteSale checks out the current cart. Online, the sale is submitted
// directly; if that fails for any reason, or when offline, it is queued for
// the reconciler. Either way the cart is cleared and the sale succeeds.
// Only a failure to queue is reported as unsuccessful.
func (s *Session) CompleteSale(ctx context.Context, opts SaleOptions) (SaleResult, error) {
	s.saleMu.Lock()
	defer s.saleMu.Unlock()

	cart, rev := s.snapshot()
	if len(cart.Items) == 0 {
		return SaleResult{}, ErrEmptyCart
	}

	discount := cart.Discount
	if opts.Discount != nil {
		discount = *opts.Discount
	}
	notes := cart.Notes
	if opts.Notes != "" {
		notes = opts.Notes
	}
	totals := models.ComputeTotals(cart.Items, discount, s.cfg.TaxEnabled, s.cfg.TaxRate)

	offlineID, err := s.newOfflineID()
	if err != nil {
		return SaleResult{}, fmt.Errorf("failed to generate offline id: %w", err)
	}

	order := models.OfflineOrder{
		OfflineID:      offlineID,
		ShopID:         s.cfg.ShopID,
		Items:          models.OrderItemsFromCart(cart.Items),
		CustomerID:     cart.CustomerID,
		PaymentMethod:  opts.PaymentMethod,
		AmountTendered: opts.AmountTendered,
		DiscountAmount: discount,
		Notes:          notes,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		CreatedAt:      s.now(),
	}

	if s.net.Online() {
		conf, err := s.client.CompleteSale(ctx, order)
		if err == nil {
			s.clearAfterSale(ctx, rev)
			s.log.Info(ctx, "sale completed", "order_id", conf.ID, "order_number", conf.OrderNumber)
			add(ctx, meters().sales, 1, attribute.String("channel", "online"))
			return SaleResult{
				Success:     true,
				OrderID:     conf.ID,
				OrderNumber: conf.OrderNumber,
				Total:       totals.Total,
			}, nil
		}
		s.log.Warn(ctx, "direct submission failed, queuing sale", "offline_id", offlineID, "error", err)
	}

	_, err = s.queue.Enqueue(ctx, models.PendingAction{
		Action:  common.ActionCreate,
		Entity:  common.EntityOfflineOrder,
		Payload: order,
		URL:     "/api/sync/orders",
		Method:  "POST",
	})
	if err != nil {
		s.log.Error(ctx, "sale could not be queued", "offline_id", offlineID, "error", err)
		return SaleResult{
			Success:   false,
			IsOffline: true,
			OfflineID: offlineID,
			Total:     totals.Total,
			Error:     err.Error(),
		}, err
	}

	s.clearAfterSale(ctx, rev)
	s.pending.Add(1)
	s.log.Info(ctx, "sale queued", "offline_id", offlineID)
	add(ctx, meters().sales, 1, attribute.String("channel", "offline"))
	return SaleResult{Success: true, IsOffline: true, OfflineID: offlineID, Total: totals.Total}, nil
}

// clearAfterSale empties the cart unless it changed after the sale was
// composed at rev. The sale already succeeded, so a failed write is only
// logged.
func (s *Session) clearAfterSale(ctx context.Context, rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rev != rev {
		s.log.Warn(ctx, "cart changed during checkout, keeping it")
		return
	}
	s.cart = models.NewCart(s.cfg.ShopID)
	s.cart.UpdatedAt = s.now()
	s.rev++
	_ = s.persist(ctx, s.cart)
}

// PendingCount is the locally tracked number of queued sales.
func (s *Session) PendingCount() int {
	return int(s.pending.Load())
}

// RefreshPendingCount re-reads the count from the queue.
func (s *Session) RefreshPendingCount(ctx context.Context) (int, error) {
	n, err := s.queue.CountPending(ctx, common.EntityOfflineOrder)
	if err != nil {
		return s.PendingCount(), err
	}
	s.pending.Store(int64(n))
	return n, nil
}

// Start refreshes the pending count every interval and on reconnect until
// Stop is called.
func (s *Session) Start(ctx context.Context, interval time.Duration) {
	refresh := func(ctx context.Context) {
		if _, err := s.RefreshPendingCount(ctx); err != nil {
			s.log.Warn(ctx, "pending count unavailable", "error", err)
		}
	}
	s.runner.start(ctx, s.net, interval, refresh, refresh)
}

func (s *Session) Stop() {
	s.runner.stop()
}
