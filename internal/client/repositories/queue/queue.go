package queue

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
	"github.com/dmitrijs2005/gophpos/internal/timex"
)

// Queue stores PendingActions in the offlineQueue collection.
type Queue struct {
	st  *store.Store
	now timex.Clock

	// serialises read-modify-write of single entries
	mu sync.Mutex
}

func New(st *store.Store, clock timex.Clock) *Queue {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &Queue{st: st, now: clock}
}

func encode(a models.PendingAction) (store.Record, error) {
	return store.Encode(strconv.FormatInt(a.ID, 10), a.UpdatedAt, a, map[string]string{
		store.FieldEntity: a.Entity,
		store.FieldSynced: strconv.FormatBool(a.Synced),
	})
}

// Enqueue appends a as a new pending entry and returns it with its assigned
// id and timestamps.
func (q *Queue) Enqueue(ctx context.Context, a models.PendingAction) (models.PendingAction, error) {
	now := q.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	a.Synced = false
	a.Retries = 0
	a.LastError = ""

	id, err := q.st.Add(ctx, store.OfflineQueue, func(id int64) (store.Record, error) {
		a.ID = id
		return encode(a)
	})
	if err != nil {
		return models.PendingAction{}, fmt.Errorf("failed to enqueue %s: %w", a.Entity, err)
	}
	a.ID = id
	return a, nil
}

// ListPending returns unsynced entries of entity in creation order.
func (q *Queue) ListPending(ctx context.Context, entity string) ([]models.PendingAction, error) {
	recs, err := q.st.GetAllByIndex(ctx, store.OfflineQueue, store.FieldEntity, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending %s: %w", entity, err)
	}
	all, err := store.DecodeAll[models.PendingAction](recs)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending %s: %w", entity, err)
	}

	out := make([]models.PendingAction, 0, len(all))
	for _, a := range all {
		if !a.Synced {
			out = append(out, a)
		}
	}
	return out, nil
}

// CountPending returns the number of unsynced entries of entity.
func (q *Queue) CountPending(ctx context.Context, entity string) (int, error) {
	pending, err := q.ListPending(ctx, entity)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// List returns every entry, synced or not, in creation order.
func (q *Queue) List(ctx context.Context) ([]models.PendingAction, error) {
	recs, err := q.st.All(ctx, store.OfflineQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	all, err := store.DecodeAll[models.PendingAction](recs)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return all, nil
}

func (q *Queue) update(ctx context.Context, id int64, fn func(*models.PendingAction)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, err := q.st.Get(ctx, store.OfflineQueue, strconv.FormatInt(id, 10))
	if err != nil {
		return err
	}
	a, err := store.Decode[models.PendingAction](rec)
	if err != nil {
		return err
	}

	fn(&a)
	a.UpdatedAt = q.now()

	next, err := encode(a)
	if err != nil {
		return err
	}
	return q.st.Put(ctx, store.OfflineQueue, next)
}

// MarkSynced flags entry id as accepted by the server of record.
func (q *Queue) MarkSynced(ctx context.Context, id int64) error {
	if err := q.update(ctx, id, func(a *models.PendingAction) { a.Synced = true }); err != nil {
		return fmt.Errorf("failed to mark action %d synced: %w", id, err)
	}
	return nil
}

// MarkFailed records a rejected delivery attempt; the entry stays pending.
func (q *Queue) MarkFailed(ctx context.Context, id int64, msg string) error {
	err := q.update(ctx, id, func(a *models.PendingAction) {
		a.Retries++
		a.LastError = msg
	})
	if err != nil {
		return fmt.Errorf("failed to mark action %d failed: %w", id, err)
	}
	return nil
}

var _ Repository = (*Queue)(nil)
