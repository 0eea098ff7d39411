package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/common"
)

type recordingListener struct {
	mu     sync.Mutex
	synced []string
	failed map[string]string
}

func (l *recordingListener) OrderSynced(offlineID string, orderID int64, orderNumber string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.synced = append(l.synced, offlineID)
}

func (l *recordingListener) OrderFailed(offlineID string, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failed == nil {
		l.failed = map[string]string{}
	}
	l.failed[offlineID] = message
}

func enqueueOrders(t *testing.T, e *env, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := e.queue.Enqueue(context.Background(), models.PendingAction{
			Action:  common.ActionCreate,
			Entity:  common.EntityOfflineOrder,
			Payload: models.OfflineOrder{OfflineID: id, ShopID: shopID},
		})
		require.NoError(t, err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestReconcile_OutcomeMapping(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	enqueueOrders(t, e, "A", "B", "C")

	e.client.syncOrders = func(ctx context.Context, orders []models.OfflineOrder) ([]client.OrderResult, error) {
		return []client.OrderResult{
			{OfflineID: "A", Success: true, OrderID: ptr(int64(1)), OrderNumber: "N-1"},
			{OfflineID: "B", Success: false, Message: "out of stock"},
			{OfflineID: "C", Success: true, OrderID: ptr(int64(3)), OrderNumber: "N-3"},
		}, nil
	}

	l := &recordingListener{}
	r := NewReconciler(e.queue, e.client, e.net, l, nil)

	rep, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Submitted: 3, Synced: 2, Failed: 1, Pending: 1}, rep)
	assert.Equal(t, 1, r.PendingCount())

	assert.Equal(t, []string{"A", "B", "C"}, offlineIDs(e.client.lastBatch), "creation order")
	assert.Equal(t, []string{"A", "C"}, l.synced)
	assert.Equal(t, map[string]string{"B": "out of stock"}, l.failed)

	all, err := e.queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Synced)
	assert.False(t, all[1].Synced)
	assert.Equal(t, 1, all[1].Retries)
	assert.Equal(t, "out of stock", all[1].LastError)
	assert.True(t, all[2].Synced)

	// only B is resubmitted
	_, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, offlineIDs(e.client.lastBatch))
}

func offlineIDs(orders []models.OfflineOrder) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OfflineID)
	}
	return out
}

func TestReconcile_NothingPendingMakesNoRequest(t *testing.T) {
	e := newEnv(t, true)
	r := NewReconciler(e.queue, e.client, e.net, nil, nil)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{}, rep)
	assert.Zero(t, e.client.syncCalls)
}

func TestReconcile_BatchFailureLeavesQueueUntouched(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	enqueueOrders(t, e, "A", "B")

	e.client.syncOrders = func(context.Context, []models.OfflineOrder) ([]client.OrderResult, error) {
		return nil, client.ErrUnavailable
	}
	r := NewReconciler(e.queue, e.client, e.net, nil, nil)

	_, err := r.Run(ctx)
	require.ErrorIs(t, err, client.ErrUnavailable)

	all, err := e.queue.List(ctx)
	require.NoError(t, err)
	for _, a := range all {
		assert.False(t, a.Synced)
		assert.Zero(t, a.Retries)
	}
	assert.Equal(t, 2, r.PendingCount())
}

func TestReconcile_UnknownAndMissingResults(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	enqueueOrders(t, e, "A", "B")

	e.client.syncOrders = func(context.Context, []models.OfflineOrder) ([]client.OrderResult, error) {
		return []client.OrderResult{
			{OfflineID: "ZZZ", Success: true},
			{OfflineID: "A", Success: false},
			{OfflineID: "A", Success: false},
		}, nil
	}
	l := &recordingListener{}
	r := NewReconciler(e.queue, e.client, e.net, l, nil)

	rep, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Zero(t, rep.Synced)
	assert.Equal(t, 2, rep.Pending)
	assert.Equal(t, common.ErrValidation.Error(), l.failed["A"])

	all, err := e.queue.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all[0].Retries, "a repeated result is applied once")
	assert.Zero(t, all[1].Retries)
}

func TestReconcile_ConcurrentRunIsNoOp(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	enqueueOrders(t, e, "A")

	started := make(chan struct{})
	release := make(chan struct{})
	e.client.syncOrders = func(context.Context, []models.OfflineOrder) ([]client.OrderResult, error) {
		close(started)
		<-release
		return []client.OrderResult{{OfflineID: "A", Success: true}}, nil
	}
	r := NewReconciler(e.queue, e.client, e.net, nil, nil)

	done := make(chan ReconcileReport)
	go func() {
		rep, _ := r.Run(ctx)
		done <- rep
	}()
	<-started

	rep, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Skipped)

	close(release)
	assert.Equal(t, 1, (<-done).Synced)
	assert.Equal(t, 1, e.client.syncCalls)
}

func TestReconcile_LateResultsAreDropped(t *testing.T) {
	e := newEnv(t, true)
	enqueueOrders(t, e, "A")

	ctx, cancel := context.WithCancel(context.Background())
	e.client.syncOrders = func(context.Context, []models.OfflineOrder) ([]client.OrderResult, error) {
		cancel()
		return []client.OrderResult{{OfflineID: "A", Success: true}}, nil
	}
	l := &recordingListener{}
	r := NewReconciler(e.queue, e.client, e.net, l, nil)

	_, err := r.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, l.synced)

	n, err := e.queue.CountPending(context.Background(), common.EntityOfflineOrder)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReconcile_StartRunsOnReconnectOnly(t *testing.T) {
	e := newEnv(t, false)
	enqueueOrders(t, e, "A")

	synced := make(chan string, 1)
	e.client.syncOrders = func(context.Context, []models.OfflineOrder) ([]client.OrderResult, error) {
		return []client.OrderResult{{OfflineID: "A", Success: true, OrderID: ptr(int64(9))}}, nil
	}
	r := NewReconciler(e.queue, e.client, e.net, ListenerFuncs{
		Synced: func(offlineID string, orderID int64, _ string) { synced <- offlineID },
	}, nil)

	r.Start(context.Background(), time.Hour)
	defer r.Stop()

	select {
	case <-synced:
		t.Fatal("reconciled while offline")
	case <-time.After(20 * time.Millisecond):
	}

	e.net.SetOnline(true)
	select {
	case id := <-synced:
		assert.Equal(t, "A", id)
	case <-time.After(time.Second):
		t.Fatal("no reconcile after reconnect")
	}
	require.Eventually(t, func() bool { return r.PendingCount() == 0 }, time.Second, time.Millisecond)
}

func TestReconcile_StopUnsubscribes(t *testing.T) {
	e := newEnv(t, false)
	enqueueOrders(t, e, "A")
	r := NewReconciler(e.queue, e.client, e.net, nil, nil)

	r.Start(context.Background(), time.Hour)
	r.Stop()

	e.net.SetOnline(true)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, e.client.syncCalls)

	// Stop is safe to repeat
	r.Stop()
}
