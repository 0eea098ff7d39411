// Package store is the local structured store of the POS client: a small
// document database on top of SQLite.
//
// Records are opaque JSON documents addressed by (collection, key). Each
// record may carry named fields that are indexed for exact lookups
// (GetAllByIndex), scoping (tenant, shop) and case-insensitive search.
// Writes are last-write-wins on Record.UpdatedAt, so re-applying the same
// server snapshot is idempotent and an older snapshot never replaces a
// newer one.
//
// The store is constructed explicitly with Open and must be closed by the
// owner. Every failure other than a missing record is reported wrapped in
// common.ErrStorageUnavailable.
package store
