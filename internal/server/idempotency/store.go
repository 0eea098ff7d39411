// Package idempotency remembers which offline ids already became orders so
// that replayed submissions are answered without touching the database.
// The database unique constraint stays the source of truth; this is a fast
// path only.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyOrderCreate is idem:order:create:{tenant}:{offline_id} -> order id.
	KeyOrderCreate = "idem:order:create:%d:%s"

	TTL = 24 * time.Hour
)

type Store interface {
	// Lookup returns the order id recorded for offlineID, if any.
	Lookup(ctx context.Context, tenantID int64, offlineID string) (int64, bool, error)
	Remember(ctx context.Context, tenantID int64, offlineID string, orderID int64) error
}

// New returns a Redis client for addr.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: TTL}
}

func key(tenantID int64, offlineID string) string {
	return fmt.Sprintf(KeyOrderCreate, tenantID, offlineID)
}

func (s *RedisStore) Lookup(ctx context.Context, tenantID int64, offlineID string) (int64, bool, error) {
	v, err := s.rdb.Get(ctx, key(tenantID, offlineID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: bad value %q", v)
	}
	return id, true, nil
}

func (s *RedisStore) Remember(ctx context.Context, tenantID int64, offlineID string, orderID int64) error {
	if err := s.rdb.Set(ctx, key(tenantID, offlineID), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Nop never remembers anything. It is used when no Redis is configured.
type Nop struct{}

func (Nop) Lookup(context.Context, int64, string) (int64, bool, error) { return 0, false, nil }
func (Nop) Remember(context.Context, int64, string, int64) error       { return nil }
