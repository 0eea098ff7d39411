package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophpos/internal/client/netwatch"
	"github.com/dmitrijs2005/gophpos/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophpos/internal/client/store"
	"github.com/dmitrijs2005/gophpos/internal/logging"
)

// MinQueryLength is the shortest query Search acts on.
const MinQueryLength = 2

// DefaultSearchLimit caps local search results.
const DefaultSearchLimit = 50

type EngineState string

const (
	StateIdle    EngineState = "idle"
	StateSyncing EngineState = "syncing"
)

// Adapter binds a CatalogEngine to one entity type.
type Adapter[T any] interface {
	// Entity is the sync metadata key, e.g. "products".
	Entity() string
	Collection() store.Collection
	Scope() store.Scope
	// Pull fetches records changed after since, or all when since is nil.
	Pull(ctx context.Context, since *time.Time) ([]T, error)
	RemoteSearch(ctx context.Context, query string) ([]T, error)
	Record(v T) (store.Record, error)
	InScope(v T) bool
}

// SyncResult describes one Sync call.
type SyncResult struct {
	// Skipped is set when the engine was offline or already syncing.
	Skipped bool
	Full    bool
	Pulled  int
	Written int
	At      time.Time
}

// EngineStatus is a snapshot of an engine for display.
type EngineStatus struct {
	Entity    string
	State     EngineState
	LastError string
	Count     int
	LastSync  *time.Time
}

// CatalogEngine keeps a local, scoped copy of one entity type in sync with
// the server of record and serves local-first search over it.
type CatalogEngine[T any] struct {
	adapter Adapter[T]
	st      *store.Store
	meta    metadata.Repository
	net     netwatch.Status
	log     logging.Logger
	limit   int

	// held for the duration of a sync
	inflight sync.Mutex

	mu        sync.Mutex
	state     EngineState
	lastError string
	count     int

	runner runner
}

func NewCatalogEngine[T any](a Adapter[T], st *store.Store, meta metadata.Repository, net netwatch.Status, log logging.Logger) *CatalogEngine[T] {
	if log == nil {
		log = logging.NewNop()
	}
	return &CatalogEngine[T]{
		adapter: a,
		st:      st,
		meta:    meta,
		net:     net,
		log:     log.With("entity", a.Entity()),
		limit:   DefaultSearchLimit,
		state:   StateIdle,
	}
}

func (e *CatalogEngine[T]) setState(state EngineState, lastError string) {
	e.mu.Lock()
	e.state = state
	e.lastError = lastError
	e.mu.Unlock()
}

// Sync pulls the delta since the last successful sync and upserts it
// locally. It is a no-op while offline or while another Sync of the same
// engine is running. On failure the error is recorded in the engine state
// and the last-sync time is left untouched, so the next run retries the
// same delta.
func (e *CatalogEngine[T]) Sync(ctx context.Context) (SyncResult, error) {
	if !e.net.Online() {
		return SyncResult{Skipped: true}, nil
	}
	if !e.inflight.TryLock() {
		return SyncResult{Skipped: true}, nil
	}
	defer e.inflight.Unlock()

	e.mu.Lock()
	e.state = StateSyncing
	e.mu.Unlock()

	res, err := e.sync(ctx)
	entity := attribute.String("entity", e.adapter.Entity())
	if err != nil {
		e.setState(StateIdle, err.Error())
		e.log.Warn(ctx, "sync failed", "error", err)
		add(ctx, meters().syncRuns, 1, entity, attribute.String("outcome", "error"))
		return res, err
	}

	e.setState(StateIdle, "")
	e.log.Info(ctx, "sync finished", "pulled", res.Pulled, "written", res.Written, "full", res.Full)
	add(ctx, meters().syncRuns, 1, entity, attribute.String("outcome", "ok"))
	add(ctx, meters().syncedRecords, int64(res.Pulled), entity)
	return res, nil
}

func (e *CatalogEngine[T]) sync(ctx context.Context) (SyncResult, error) {
	key := e.adapter.Entity()

	since, err := e.meta.LastSyncTime(ctx, key)
	if err != nil {
		return SyncResult{}, err
	}

	started := e.meta.Now()
	items, err := e.adapter.Pull(ctx, since)
	if err != nil {
		return SyncResult{}, err
	}

	recs := make([]store.Record, 0, len(items))
	for _, it := range items {
		rec, err := e.adapter.Record(it)
		if err != nil {
			return SyncResult{}, err
		}
		recs = append(recs, rec)
	}

	written, err := e.st.PutMany(ctx, e.adapter.Collection(), recs)
	if err != nil {
		return SyncResult{}, err
	}

	if err := e.meta.SetLastSyncTimeAt(ctx, key, started); err != nil {
		return SyncResult{}, err
	}

	if _, err := e.Count(ctx); err != nil {
		e.log.Warn(ctx, "count failed", "error", err)
	}

	return SyncResult{Full: since == nil, Pulled: len(items), Written: written, At: started}, nil
}

// Search returns in-scope records matching query. The local cache is
// consulted first; only when it has nothing and the client is online is the
// server searched, and its in-scope hits are cached before being returned.
// Failures are logged and yield an empty result.
func (e *CatalogEngine[T]) Search(ctx context.Context, query string) []T {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []T{}
	}

	local, err := e.st.Search(ctx, e.adapter.Collection(), q, e.adapter.Scope(), e.limit)
	if err != nil {
		e.log.Warn(ctx, "local search failed", "query", q, "error", err)
	}
	if len(local) > 0 {
		found, err := store.DecodeAll[T](local)
		if err == nil {
			return found
		}
		e.log.Warn(ctx, "local search failed", "query", q, "error", err)
	}

	if !e.net.Online() {
		return []T{}
	}

	remote, err := e.adapter.RemoteSearch(ctx, q)
	if err != nil {
		e.log.Warn(ctx, "remote search failed", "query", q, "error", err)
		return []T{}
	}

	found := make([]T, 0, len(remote))
	recs := make([]store.Record, 0, len(remote))
	for _, it := range remote {
		if !e.adapter.InScope(it) {
			continue
		}
		rec, err := e.adapter.Record(it)
		if err != nil {
			e.log.Warn(ctx, "skipping search hit", "error", err)
			continue
		}
		found = append(found, it)
		recs = append(recs, rec)
	}

	if len(recs) > 0 {
		if _, err := e.st.PutMany(ctx, e.adapter.Collection(), recs); err != nil {
			e.log.Warn(ctx, "caching search hits failed", "error", err)
		} else if _, err := e.Count(ctx); err != nil {
			e.log.Warn(ctx, "count failed", "error", err)
		}
	}

	if len(found) > e.limit {
		found = found[:e.limit]
	}
	return found
}

// Count recomputes the number of cached in-scope records.
func (e *CatalogEngine[T]) Count(ctx context.Context) (int, error) {
	n, err := e.st.Count(ctx, e.adapter.Collection(), e.adapter.Scope())
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	e.count = n
	e.mu.Unlock()
	return n, nil
}

// Prune drops cached records older than the tracker's max age. When
// anything was dropped the last-sync time is reset so the next Sync is a
// full fetch and restores unchanged records.
func (e *CatalogEngine[T]) Prune(ctx context.Context) (int64, error) {
	n, err := e.meta.ClearExpired(ctx, e.adapter.Collection())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := e.meta.Reset(ctx, e.adapter.Entity()); err != nil {
			return n, err
		}
		if _, err := e.Count(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (e *CatalogEngine[T]) Status(ctx context.Context) EngineStatus {
	last, _ := e.meta.LastSyncTime(ctx, e.adapter.Entity())

	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStatus{
		Entity:    e.adapter.Entity(),
		State:     e.state,
		LastError: e.lastError,
		Count:     e.count,
		LastSync:  last,
	}
}

// Start syncs in the background: every interval and immediately on every
// reconnect. Ticks that find a sync in flight are skipped. It returns at once.
func (e *CatalogEngine[T]) Start(ctx context.Context, interval time.Duration) {
	if _, err := e.Count(ctx); err != nil {
		e.log.Warn(ctx, "count failed", "error", err)
	}

	run := func(ctx context.Context) { _, _ = e.Sync(ctx) }
	e.runner.start(ctx, e.net, interval, run, run)
}

// Stop ends the background loop started by Start and waits for it.
func (e *CatalogEngine[T]) Stop() {
	e.runner.stop()
}
