// Package metadata tracks when each entity type was last pulled from the
// server of record and decides whether its local cache is stale.
//
// The Tracker is the only staleness authority of the client: sync engines
// ask it for the delta lower bound and for expiry, and never compare
// timestamps themselves.
package metadata
