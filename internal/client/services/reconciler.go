package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/netwatch"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/queue"
	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/logging"
)

// Listener is notified about every queued order the server answered for.
type Listener interface {
	OrderSynced(offlineID string, orderID int64, orderNumber string)
	OrderFailed(offlineID string, message string)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Synced func(offlineID string, orderID int64, orderNumber string)
	Failed func(offlineID string, message string)
}

func (l ListenerFuncs) OrderSynced(offlineID string, orderID int64, orderNumber string) {
	if l.Synced != nil {
		l.Synced(offlineID, orderID, orderNumber)
	}
}

func (l ListenerFuncs) OrderFailed(offlineID string, message string) {
	if l.Failed != nil {
		l.Failed(offlineID, message)
	}
}

// ReconcileReport summarises one Run.
type ReconcileReport struct {
	Skipped   bool
	Submitted int
	Synced    int
	Failed    int
	Pending   int
}

// Reconciler delivers queued offline orders to the server of record in one
// bulk request per run.
type Reconciler struct {
	queue    queue.Repository
	client   client.Client
	net      netwatch.Status
	log      logging.Logger
	listener Listener

	inflight sync.Mutex
	pending  atomic.Int64

	runner runner
}

func NewReconciler(q queue.Repository, c client.Client, net netwatch.Status, listener Listener, log logging.Logger) *Reconciler {
	if log == nil {
		log = logging.NewNop()
	}
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &Reconciler{queue: q, client: c, net: net, listener: listener, log: log}
}

// PendingCount is the number of unsynced orders seen by the last run.
func (r *Reconciler) PendingCount() int {
	return int(r.pending.Load())
}

// Run submits every pending offline order. Results are matched to queue
// entries by offline id; results for unknown ids are ignored and entries
// without a result stay pending. If the request itself fails, or ctx is
// canceled before the results arrive, nothing is marked. Concurrent calls
// are no-ops.
func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	if !r.inflight.TryLock() {
		return ReconcileReport{Skipped: true}, nil
	}
	defer r.inflight.Unlock()

	pending, err := r.queue.ListPending(ctx, common.EntityOfflineOrder)
	if err != nil {
		r.log.Error(ctx, "cannot read offline queue", "error", err)
		return ReconcileReport{}, err
	}
	r.pending.Store(int64(len(pending)))
	if len(pending) == 0 {
		return ReconcileReport{}, nil
	}

	byOfflineID := make(map[string]models.PendingAction, len(pending))
	orders := make([]models.OfflineOrder, 0, len(pending))
	for _, a := range pending {
		byOfflineID[a.Payload.OfflineID] = a
		orders = append(orders, a.Payload)
	}

	report := ReconcileReport{Submitted: len(orders), Pending: len(pending)}

	results, err := r.client.SyncOrders(ctx, orders)
	if err != nil {
		r.log.Warn(ctx, "bulk order sync failed", "orders", len(orders), "error", err)
		return report, err
	}
	if err := ctx.Err(); err != nil {
		r.log.Info(ctx, "dropping late reconcile results", "orders", len(orders))
		return report, err
	}

	for _, res := range results {
		a, ok := byOfflineID[res.OfflineID]
		if !ok {
			continue
		}
		// a result is applied once even if the server repeats it
		delete(byOfflineID, res.OfflineID)

		if res.Success {
			if err := r.queue.MarkSynced(ctx, a.ID); err != nil {
				r.log.Error(ctx, "cannot mark order synced", "offline_id", res.OfflineID, "error", err)
				continue
			}
			var orderID int64
			if res.OrderID != nil {
				orderID = *res.OrderID
			}
			report.Synced++
			add(ctx, meters().reconciled, 1, attribute.String("outcome", "synced"))
			r.listener.OrderSynced(res.OfflineID, orderID, res.OrderNumber)
			continue
		}

		msg := res.Message
		if msg == "" {
			msg = common.ErrValidation.Error()
		}
		if err := r.queue.MarkFailed(ctx, a.ID, msg); err != nil {
			r.log.Error(ctx, "cannot mark order failed", "offline_id", res.OfflineID, "error", err)
			continue
		}
		report.Failed++
		add(ctx, meters().reconciled, 1, attribute.String("outcome", "failed"))
		r.listener.OrderFailed(res.OfflineID, msg)
	}

	n, err := r.queue.CountPending(ctx, common.EntityOfflineOrder)
	if err != nil {
		r.log.Warn(ctx, "cannot count pending orders", "error", err)
		n = len(pending) - report.Synced
	}
	r.pending.Store(int64(n))
	report.Pending = n

	r.log.Info(ctx, "reconcile finished", "synced", report.Synced, "failed", report.Failed, "pending", report.Pending)
	return report, nil
}

// Start reconciles every interval while online and on every reconnect. It
// returns at once; Stop ends the loop.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	run := func(ctx context.Context) {
		if !r.net.Online() {
			return
		}
		_, _ = r.Run(ctx)
	}
	r.runner.start(ctx, r.net, interval, run, run)
}

// Stop unsubscribes from connectivity changes, cancels the loop and waits
// for it. Results of a run still in flight are dropped.
func (r *Reconciler) Stop() {
	r.runner.stop()
}
