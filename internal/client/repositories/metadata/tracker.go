package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/timex"
)

// Tracker keeps one SyncMeta record per entity key in the syncMeta
// collection.
type Tracker struct {
	st     *store.Store
	maxAge time.Duration
	now    timex.Clock
}

// NewTracker returns a tracker over st. maxAge bounds how long cached
// records are kept by ClearExpired.
func NewTracker(st *store.Store, maxAge time.Duration, clock timex.Clock) *Tracker {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &Tracker{st: st, maxAge: maxAge, now: clock}
}

// LastSyncTime returns the time of the last successful sync of key, or nil
// if key was never synced.
func (t *Tracker) LastSyncTime(ctx context.Context, key string) (*time.Time, error) {
	rec, err := t.st.Get(ctx, store.SyncMeta, key)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync time[%s]: %w", key, err)
	}
	meta, err := store.Decode[models.SyncMeta](rec)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync time[%s]: %w", key, err)
	}
	ts := meta.LastSyncedAt
	return &ts, nil
}

// Now is the tracker's clock.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// SetLastSyncTime records now as the last successful sync of key and
// returns it.
func (t *Tracker) SetLastSyncTime(ctx context.Context, key string) (time.Time, error) {
	now := t.now()
	if err := t.SetLastSyncTimeAt(ctx, key, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// SetLastSyncTimeAt records at as the last successful sync of key. Sync
// engines pass the time their pull started, so changes made on the server
// while the pull was in flight fall inside the next delta.
func (t *Tracker) SetLastSyncTimeAt(ctx context.Context, key string, at time.Time) error {
	rec, err := store.Encode(key, at, models.SyncMeta{Key: key, LastSyncedAt: at}, nil)
	if err != nil {
		return err
	}
	if err := t.st.Put(ctx, store.SyncMeta, rec); err != nil {
		return fmt.Errorf("failed to set last sync time[%s]: %w", key, err)
	}
	return nil
}

// IsCacheExpired reports whether key has never been synced or was last
// synced more than maxAge ago. An unreadable store counts as expired.
func (t *Tracker) IsCacheExpired(ctx context.Context, key string, maxAge time.Duration) bool {
	last, err := t.LastSyncTime(ctx, key)
	if err != nil || last == nil {
		return true
	}
	return t.now().Sub(*last) > maxAge
}

// ClearExpired drops the records of c that were stored locally more than
// the tracker's max age ago.
func (t *Tracker) ClearExpired(ctx context.Context, c store.Collection) (int64, error) {
	n, err := t.st.DeleteStoredBefore(ctx, c, t.now().Add(-t.maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired %s: %w", c.Name, err)
	}
	return n, nil
}

// List returns the last sync time of every tracked key.
func (t *Tracker) List(ctx context.Context) (map[string]time.Time, error) {
	recs, err := t.st.All(ctx, store.SyncMeta)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync metadata: %w", err)
	}
	metas, err := store.DecodeAll[models.SyncMeta](recs)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync metadata: %w", err)
	}
	out := make(map[string]time.Time, len(metas))
	for _, m := range metas {
		out[m.Key] = m.LastSyncedAt
	}
	return out, nil
}

// Reset forgets key so the next sync is a full fetch.
func (t *Tracker) Reset(ctx context.Context, key string) error {
	if err := t.st.Delete(ctx, store.SyncMeta, key); err != nil {
		return fmt.Errorf("failed to reset sync metadata[%s]: %w", key, err)
	}
	return nil
}

var _ Repository = (*Tracker)(nil)
