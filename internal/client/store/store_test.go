package store

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophpos/internal/common"
)

type doc struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Tenant int64  `json:"tenant"`
	Shop   int64  `json:"shop"`
}

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "pos.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func productRec(t *testing.T, d doc, updated time.Time, sku string) Record {
	t.Helper()
	rec, err := Encode(strconv.FormatInt(d.ID, 10), updated, d, map[string]string{
		FieldTenantID: strconv.FormatInt(d.Tenant, 10),
		FieldShopID:   strconv.FormatInt(d.Shop, 10),
		FieldName:     d.Name,
		FieldSKU:      sku,
	})
	require.NoError(t, err)
	return rec
}

func scope(tenant, shop int64) Scope {
	return Scope{FieldTenantID: strconv.FormatInt(tenant, 10), FieldShopID: strconv.FormatInt(shop, 10)}
}

func names(t *testing.T, recs []Record) []string {
	t.Helper()
	docs, err := DecodeAll[doc](recs)
	require.NoError(t, err)
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestOpen_MemoryAndMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, RunMigrations(ctx, s.db))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='records'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	in := doc{ID: 1, Name: "Cola", Tenant: 1, Shop: 1}
	require.NoError(t, s.Put(ctx, Products, productRec(t, in, t0, "C-1")))

	rec, err := s.Get(ctx, Products, "1")
	require.NoError(t, err)
	assert.Equal(t, t0, rec.UpdatedAt)

	out, err := Decode[doc](rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestGet_MissingIsNotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), Products, "404")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.False(t, errors.Is(err, common.ErrStorageUnavailable))
}

func TestPut_LastWriteWins(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	newer := doc{ID: 7, Name: "New", Tenant: 1, Shop: 1}
	older := doc{ID: 7, Name: "Old", Tenant: 1, Shop: 1}

	require.NoError(t, s.Put(ctx, Products, productRec(t, newer, t0.Add(time.Hour), "NEW")))
	require.NoError(t, s.Put(ctx, Products, productRec(t, older, t0, "OLD")))

	rec, err := s.Get(ctx, Products, "7")
	require.NoError(t, err)
	got, err := Decode[doc](rec)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	// The skipped write must not touch the indexes either.
	recs, err := s.GetAllByIndex(ctx, Products, FieldSKU, "OLD")
	require.NoError(t, err)
	assert.Empty(t, recs)
	recs, err = s.GetAllByIndex(ctx, Products, FieldSKU, "NEW")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestPutMany_IdempotentUpsert(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	batch := []Record{
		productRec(t, doc{ID: 1, Name: "A", Tenant: 1, Shop: 1}, t0, "A"),
		productRec(t, doc{ID: 2, Name: "B", Tenant: 1, Shop: 1}, t0, "B"),
	}

	n, err := s.PutMany(ctx, Products, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.PutMany(ctx, Products, batch)
	require.NoError(t, err)

	count, err := s.Count(ctx, Products, scope(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := s.All(ctx, Products)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(t, all))
}

func TestSearch_NeverCrossesScope(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.PutMany(ctx, Products, []Record{
		productRec(t, doc{ID: 1, Name: "Milk", Tenant: 1, Shop: 1}, t0, "M1"),
		productRec(t, doc{ID: 2, Name: "Milk", Tenant: 2, Shop: 1}, t0, "M2"),
		productRec(t, doc{ID: 3, Name: "Milk", Tenant: 1, Shop: 2}, t0, "M3"),
	})
	require.NoError(t, err)

	recs, err := s.Search(ctx, Products, "milk", scope(1, 1), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].Key)

	_, err = s.Search(ctx, Products, "milk", Scope{FieldShopID: "1"}, 10)
	require.ErrorIs(t, err, ErrScopeRequired)
}

func TestSearch_ScopeAppliedBeforeLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	var batch []Record
	for i := int64(1); i <= 5; i++ {
		batch = append(batch, productRec(t, doc{ID: i, Name: "Bread", Tenant: 9, Shop: 9}, t0, ""))
	}
	batch = append(batch, productRec(t, doc{ID: 6, Name: "Bread", Tenant: 1, Shop: 1}, t0, ""))
	_, err := s.PutMany(ctx, Products, batch)
	require.NoError(t, err)

	recs, err := s.Search(ctx, Products, "bread", scope(1, 1), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "6", recs[0].Key)
}

func TestSearch_RankingIsDeterministic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.PutMany(ctx, Products, []Record{
		productRec(t, doc{ID: 1, Name: "Chocolate Tea", Tenant: 1, Shop: 1}, t0, ""),
		productRec(t, doc{ID: 2, Name: "Tea bags", Tenant: 1, Shop: 1}, t0, ""),
		productRec(t, doc{ID: 3, Name: "Green tea", Tenant: 1, Shop: 1}, t0, ""),
		productRec(t, doc{ID: 4, Name: "TEA", Tenant: 1, Shop: 1}, t0, ""),
		productRec(t, doc{ID: 5, Name: "Teapot", Tenant: 1, Shop: 1}, t0, ""),
		productRec(t, doc{ID: 6, Name: "Coffee", Tenant: 1, Shop: 1}, t0, ""),
	})
	require.NoError(t, err)

	recs, err := s.Search(ctx, Products, "tea", scope(1, 1), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"TEA", "Tea bags", "Teapot", "Chocolate Tea", "Green tea"}, names(t, recs))
}

func TestSearch_MatchesAnySearchFieldOnce(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Products, productRec(t, doc{ID: 1, Name: "ab-widget", Tenant: 1, Shop: 1}, t0, "AB-1")))

	recs, err := s.Search(ctx, Products, "ab", scope(1, 1), 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSearch_EscapesWildcards(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.PutMany(ctx, Products, []Record{
		productRec(t, doc{ID: 1, Name: "100% juice", Tenant: 1, Shop: 1}, t0, ""),
		productRec(t, doc{ID: 2, Name: "1000 juice", Tenant: 1, Shop: 1}, t0, ""),
	})
	require.NoError(t, err)

	recs, err := s.Search(ctx, Products, "0%", scope(1, 1), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% juice"}, names(t, recs))
}

func TestGetAllByIndex_UnknownIndex(t *testing.T) {
	s := openStore(t)

	_, err := s.GetAllByIndex(context.Background(), Products, "color", "red")
	require.ErrorIs(t, err, ErrUnknownIndex)
}

func TestAdd_AssignsIncreasingIDs(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	build := func(id int64) (Record, error) {
		return Encode("", t0, doc{ID: id, Name: "q"}, map[string]string{FieldEntity: "offline_order"})
	}

	id1, err := s.Add(ctx, OfflineQueue, build)
	require.NoError(t, err)
	id2, err := s.Add(ctx, OfflineQueue, build)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	// Ids are never reused after a delete.
	require.NoError(t, s.Delete(ctx, OfflineQueue, "2"))
	id3, err := s.Add(ctx, OfflineQueue, build)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id3)

	rec, err := s.Get(ctx, OfflineQueue, "3")
	require.NoError(t, err)
	d, err := Decode[doc](rec)
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.ID)
}

func TestAdd_BuildErrorIsReturnedAsIs(t *testing.T) {
	s := openStore(t)
	boom := errors.New("boom")

	_, err := s.Add(context.Background(), OfflineQueue, func(int64) (Record, error) { return Record{}, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, common.ErrStorageUnavailable))
}

func TestDelete_IsIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Carts, Record{Key: "cart_1", Data: []byte(`{}`)}))
	require.NoError(t, s.Delete(ctx, Carts, "cart_1"))
	require.NoError(t, s.Delete(ctx, Carts, "cart_1"))

	_, err := s.Get(ctx, Carts, "cart_1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteStoredBefore(t *testing.T) {
	now := t0
	s := openStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Products, productRec(t, doc{ID: 1, Name: "old", Tenant: 1, Shop: 1}, t0, "")))
	now = t0.Add(2 * time.Hour)
	require.NoError(t, s.Put(ctx, Products, productRec(t, doc{ID: 2, Name: "fresh", Tenant: 1, Shop: 1}, t0, "")))

	n, err := s.DeleteStoredBefore(ctx, Products, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := s.All(ctx, Products)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names(t, all))

	recs, err := s.Search(ctx, Products, "old", scope(1, 1), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestClosedStore_ReportsStorageUnavailable(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, Products, "1")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	require.ErrorIs(t, s.Put(ctx, Carts, Record{Key: "k", Data: []byte(`{}`)}), common.ErrStorageUnavailable)

	_, err = s.Search(ctx, Products, "x", scope(1, 1), 10)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	_, err = s.Count(ctx, Customers, Scope{FieldTenantID: "1"})
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	_, err = s.Add(ctx, OfflineQueue, func(int64) (Record, error) { return Record{Data: []byte(`{}`)}, nil })
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestDecode_CorruptDocument(t *testing.T) {
	_, err := Decode[doc](Record{Key: "1", Data: []byte("{")})
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
}
