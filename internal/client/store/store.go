package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dmitrijs2005/gophpos/internal/client/migrations"
	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/dbx"
	"github.com/dmitrijs2005/gophpos/internal/timex"
)

// Store is a SQLite-backed document store. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now timex.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp StoredAt.
func WithClock(c timex.Clock) Option {
	return func(s *Store) { s.now = c }
}

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the SQLite database at dsn and migrates
// it. ":memory:" gives a private in-memory store.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases
	// alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, unavailable("open", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate", err)
	}

	s := &Store{db: db, now: timex.SystemClock}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close releases the database handle. Subsequent calls fail with
// common.ErrStorageUnavailable.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		r                 Record
		updated, storedAt int64
	)
	if err := rows.Scan(&r.Key, &r.Data, &updated, &storedAt); err != nil {
		return Record{}, err
	}
	r.UpdatedAt = time.Unix(0, updated).UTC()
	r.StoredAt = time.Unix(0, storedAt).UTC()
	return r, nil
}

// Get returns the record stored under key, or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, c Collection, key string) (Record, error) {
	var (
		r                 Record
		updated, storedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, data, updated_at, stored_at
		FROM records
		WHERE collection = ? AND key = ?`, c.Name, key).Scan(&r.Key, &r.Data, &updated, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s[%s]: %w", c.Name, key, common.ErrNotFound)
	}
	if err != nil {
		return Record{}, unavailable(fmt.Sprintf("get %s[%s]", c.Name, key), err)
	}
	r.UpdatedAt = time.Unix(0, updated).UTC()
	r.StoredAt = time.Unix(0, storedAt).UTC()
	return r, nil
}

// All returns every record of the collection in insertion order.
func (s *Store) All(ctx context.Context, c Collection) ([]Record, error) {
	recs, err := dbx.QueryAll(ctx, s.db, scanRecord, `
		SELECT key, data, updated_at, stored_at
		FROM records
		WHERE collection = ?
		ORDER BY seq`, c.Name)
	if err != nil {
		return nil, unavailable("list "+c.Name, err)
	}
	return recs, nil
}

// GetAllByIndex returns the records whose index field equals value, in
// insertion order.
func (s *Store) GetAllByIndex(ctx context.Context, c Collection, index, value string) ([]Record, error) {
	if !c.indexed(index) {
		return nil, fmt.Errorf("%s.%s: %w", c.Name, index, ErrUnknownIndex)
	}
	recs, err := dbx.QueryAll(ctx, s.db, scanRecord, `
		SELECT r.key, r.data, r.updated_at, r.stored_at
		FROM records r
		JOIN record_fields f ON f.collection = r.collection AND f.key = r.key
		WHERE r.collection = ? AND f.name = ? AND f.value = ?
		ORDER BY r.seq`, c.Name, index, value)
	if err != nil {
		return nil, unavailable(fmt.Sprintf("index %s.%s", c.Name, index), err)
	}
	return recs, nil
}

const upsertRecord = `
	INSERT INTO records (collection, key, data, updated_at, stored_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (collection, key) DO UPDATE SET
		data       = excluded.data,
		updated_at = excluded.updated_at,
		stored_at  = excluded.stored_at
	WHERE excluded.updated_at >= records.updated_at`

// put writes rec inside tx. It reports whether the record was written; a
// record older than the stored one is skipped.
func (s *Store) put(ctx context.Context, tx dbx.DBTX, c Collection, rec Record) (bool, error) {
	now := s.now()
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = now
	}

	res, err := tx.ExecContext(ctx, upsertRecord, c.Name, rec.Key, rec.Data, updated.UnixNano(), now.UnixNano())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_fields WHERE collection = ? AND key = ?`, c.Name, rec.Key); err != nil {
		return false, err
	}
	for _, name := range slices.Sorted(maps.Keys(rec.Fields)) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_fields (collection, key, name, value) VALUES (?, ?, ?, ?)`,
			c.Name, rec.Key, name, rec.Fields[name]); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Put upserts rec. The write is ignored when a record with a newer
// UpdatedAt is already stored. A zero UpdatedAt is stamped with the current
// time.
func (s *Store) Put(ctx context.Context, c Collection, rec Record) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.put(ctx, tx, c, rec)
		return err
	})
	if err != nil {
		return unavailable(fmt.Sprintf("put %s[%s]", c.Name, rec.Key), err)
	}
	return nil
}

// PutMany upserts all records in one transaction with the same rules as Put.
// It returns how many records were actually written.
func (s *Store) PutMany(ctx context.Context, c Collection, recs []Record) (int, error) {
	written := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, rec := range recs {
			ok, err := s.put(ctx, tx, c, rec)
			if err != nil {
				return err
			}
			if ok {
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, unavailable("put many "+c.Name, err)
	}
	return written, nil
}

// Add allocates the next auto-increment id of the collection, builds the
// record with it and inserts it under the decimal id as key. Ids start at 1
// and are never reused.
func (s *Store) Add(ctx context.Context, c Collection, build func(id int64) (Record, error)) (int64, error) {
	var (
		id       int64
		buildErr error
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO sequences (collection, value) VALUES (?, 1)
			ON CONFLICT (collection) DO UPDATE SET value = value + 1
			RETURNING value`, c.Name).Scan(&id)
		if err != nil {
			return err
		}

		rec, err := build(id)
		if err != nil {
			buildErr = err
			return err
		}
		rec.Key = strconv.FormatInt(id, 10)

		_, err = s.put(ctx, tx, c, rec)
		return err
	})
	if buildErr != nil {
		return 0, buildErr
	}
	if err != nil {
		return 0, unavailable("add "+c.Name, err)
	}
	return id, nil
}

// Delete removes the record under key. Deleting a missing key is not an
// error.
func (s *Store) Delete(ctx context.Context, c Collection, key string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM record_fields WHERE collection = ? AND key = ?`, c.Name, key); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND key = ?`, c.Name, key)
		return err
	})
	if err != nil {
		return unavailable(fmt.Sprintf("delete %s[%s]", c.Name, key), err)
	}
	return nil
}

// DeleteStoredBefore removes every record of the collection written locally
// before cutoff and returns how many were removed.
func (s *Store) DeleteStoredBefore(ctx context.Context, c Collection, cutoff time.Time) (int64, error) {
	var n int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM record_fields
			WHERE collection = ? AND key IN (
				SELECT key FROM records WHERE collection = ? AND stored_at < ?
			)`, c.Name, c.Name, cutoff.UnixNano()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND stored_at < ?`, c.Name, cutoff.UnixNano())
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, unavailable("expire "+c.Name, err)
	}
	return n, nil
}

// scopeClause renders one EXISTS filter per scope entry, in key order.
func scopeClause(scope Scope) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	for _, name := range slices.Sorted(maps.Keys(scope)) {
		b.WriteString(`
			AND EXISTS (
				SELECT 1 FROM record_fields s
				WHERE s.collection = r.collection AND s.key = r.key AND s.name = ? AND s.value = ?
			)`)
		args = append(args, name, scope[name])
	}
	return b.String(), args
}

// Count returns the number of records in scope.
func (s *Store) Count(ctx context.Context, c Collection, scope Scope) (int, error) {
	if err := c.checkScope(scope); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.Name, err)
	}
	clause, scopeArgs := scopeClause(scope)
	args := append([]any{c.Name}, scopeArgs...)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records r WHERE r.collection = ?`+clause, args...).Scan(&n)
	if err != nil {
		return 0, unavailable("count "+c.Name, err)
	}
	return n, nil
}
