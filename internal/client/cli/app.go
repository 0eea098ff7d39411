package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/config"
	"github.com/dmitrijs2005/gophpos/internal/client/journal"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/netwatch"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/queue"
	"github.com/dmitrijs2005/gophpos/internal/client/services"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
	"github.com/dmitrijs2005/gophpos/internal/filex"
	"github.com/dmitrijs2005/gophpos/internal/logging"
	"github.com/dmitrijs2005/gophpos/internal/netx"
)

// App is one POS terminal: a shop's cart, its cached catalog and its
// offline queue, driven from a REPL.
type App struct {
	cfg *config.Config
	log logging.Logger

	st         *store.Store
	net        *netwatch.Monitor
	queue      *queue.Queue
	products   *services.CatalogEngine[models.SyncProduct]
	customers  *services.CatalogEngine[models.SyncCustomer]
	session    *services.Session
	reconciler *services.Reconciler
	journal    *journal.Exporter

	in  io.Reader
	out io.Writer

	// results of the last searches, for "add <n>" and "customer <n>"
	lastProducts  []models.SyncProduct
	lastCustomers []models.SyncCustomer
}

// NewApp opens the local store at cfg.DBPath and connects the terminal to
// the server of record at cfg.ServerURL.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	dsn := cfg.DBPath
	if dsn != ":memory:" {
		path, err := filex.EnsureParentDir(dsn)
		if err != nil {
			return nil, err
		}
		dsn = path
	}

	st, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	c, err := client.NewHTTPClient(client.Options{
		BaseURL:   cfg.ServerURL,
		APIToken:  cfg.APIToken,
		CSRFToken: cfg.CSRFToken,
		Timeout:   cfg.HTTPTimeout,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return newApp(cfg, st, c, log, in, out), nil
}

func newApp(cfg *config.Config, st *store.Store, c client.Client, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.With("shop_id", cfg.ShopID, "tenant_id", cfg.TenantID)

	a := &App{cfg: cfg, log: log, st: st, in: in, out: &lockedWriter{w: out}}

	a.net = netwatch.NewMonitor(c, log)
	meta := metadata.NewTracker(st, cfg.CacheMaxAge, nil)
	a.queue = queue.New(st, nil)

	a.products = services.NewCatalogEngine[models.SyncProduct](services.NewProductAdapter(c, cfg.TenantID, cfg.ShopID), st, meta, a.net, log)
	a.customers = services.NewCatalogEngine[models.SyncCustomer](services.NewCustomerAdapter(c, cfg.TenantID), st, meta, a.net, log)

	a.session = services.NewSession(services.SessionConfig{
		ShopID:     cfg.ShopID,
		TaxEnabled: cfg.TaxEnabled,
		TaxRate:    cfg.TaxRate,
	}, st, a.queue, c, a.net, log, nil)

	a.reconciler = services.NewReconciler(a.queue, c, a.net, a, log)
	a.journal = journal.NewExporter(a.queue, c, netx.NewUploader(nil), log)
	return a
}

// Run restores the cart, starts the background loops and blocks in the REPL
// until the user exits or ctx is done. The store is closed on return.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Load(ctx); err != nil {
		a.log.Warn(ctx, "cart not restored", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.net.Start(ctx, a.cfg.OnlineCheckInterval)
	}()

	a.products.Start(ctx, a.cfg.SyncInterval)
	a.customers.Start(ctx, a.cfg.SyncInterval)
	a.reconciler.Start(ctx, a.cfg.ReconcileInterval)
	a.session.Start(ctx, a.cfg.ReconcileInterval)

	fmt.Fprintln(a.out, "POS terminal (type 'help' for commands)")
	runREPL(ctx, a, a.statusLine, bufio.NewScanner(a.in))

	a.session.Stop()
	a.reconciler.Stop()
	a.customers.Stop()
	a.products.Stop()
	cancel()
	wg.Wait()
}

func (a *App) Close() {
	if err := a.st.Close(); err != nil {
		a.log.Warn(context.Background(), "closing store failed", "error", err)
	}
}

func (a *App) statusLine() string {
	s := string(a.net.Mode())
	if n := a.session.PendingCount(); n > 0 {
		s = fmt.Sprintf("%s, %d pending", s, n)
	}
	return "(" + s + ")"
}

// OrderSynced reports a queued sale the server accepted.
func (a *App) OrderSynced(offlineID string, orderID int64, orderNumber string) {
	fmt.Fprintf(a.out, "offline sale %s synced as order %s (#%d)\n", offlineID, orderNumber, orderID)
}

// OrderFailed reports a queued sale the server refused; it stays queued.
func (a *App) OrderFailed(offlineID string, message string) {
	fmt.Fprintf(a.out, "offline sale %s rejected: %s\n", offlineID, message)
}

var _ services.Listener = (*App)(nil)

// lockedWriter serialises output from the REPL and the reconciler loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
