package metadata

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/store"
)

// Repository is the sync metadata contract consumed by the sync engines.
type Repository interface {
	LastSyncTime(ctx context.Context, key string) (*time.Time, error)
	SetLastSyncTime(ctx context.Context, key string) (time.Time, error)
	SetLastSyncTimeAt(ctx context.Context, key string, at time.Time) error
	Now() time.Time
	IsCacheExpired(ctx context.Context, key string, maxAge time.Duration) bool
	ClearExpired(ctx context.Context, c store.Collection) (int64, error)
	List(ctx context.Context) (map[string]time.Time, error)
	Reset(ctx context.Context, key string) error
}
